// gstctl tareas de cierre tributario y mantenimiento sobre la misma base que la API:
// migraciones, consolidación GST por período, exportaciones a Excel y Tally
// y regeneración de PDF pendientes.
//
// Uso: go run ./cmd/gstctl <comando> [flags]
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env opcional; las variables ya exportadas tienen prioridad
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Advertencia: no se pudo leer .env: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
