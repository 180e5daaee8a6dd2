package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"agrocontrol_app_go/config"
	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"
	"agrocontrol_app_go/pkg/logger"
	"agrocontrol_app_go/services"

	"go.uber.org/zap"
)

// dbcheck connects with the server configuration, reports which stored
// procedures the database offers and how many rows each entity table holds.
func main() {
	cfg := config.Load()
	log := logger.Must(logger.New(cfg.Environment))
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gw := db.NewGateway(db.OpenerFor(cfg), cfg.DBDriver, log)
	if err := gw.Connect(ctx); err != nil {
		fmt.Println("Error: No se pudo conectar a la base de datos")
		log.Error("Connection test failed", zap.Error(err))
		os.Exit(1)
	}
	defer gw.Close()
	fmt.Printf("Conexión exitosa (%s)\n", cfg.DBDriver)

	procs, err := gw.ProbeProcedures(ctx)
	if err != nil {
		log.Warn("Stored procedure probe failed", zap.Error(err))
	}
	fmt.Printf("Procedimientos almacenados: %d\n", len(procs))
	for _, name := range procs {
		fmt.Printf("  - %s\n", name)
	}

	opts := services.EntityOptions{InUseMarkers: cfg.InUseMarkers, Log: log}
	counters := map[string]*services.EntityController{
		"fincas":   services.NewFincaService(gw, opts).EntityController,
		"cultivos": services.NewCultivoService(gw, nil, opts).EntityController,
		"parcelas": services.NewParcelaService(gw, opts),
		"clientes": services.NewClienteService(gw, opts),
		"hoteles":  services.NewHotelService(gw, opts),
	}

	failed := false
	for _, schema := range models.Schemas() {
		n, err := counters[schema.Plural].Count(ctx)
		if err != nil {
			fmt.Printf("  %-10s error: %v\n", schema.Plural, err)
			failed = true
			continue
		}
		fmt.Printf("  %-10s %d registros\n", schema.Plural, n)
	}
	if failed {
		os.Exit(1)
	}
}
