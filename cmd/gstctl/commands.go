package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/bootstrap"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/config"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/jwt"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// cli estado compartido por los subcomandos.
type cli struct {
	out io.Writer
	log *logger.Logger
	cfg *config.Config
}

// open carga la configuración y arma los casos de uso.
func (c *cli) open(ctx context.Context, migrate bool) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	c.cfg = cfg
	c.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("gstctl")
	return bootstrap.Build(ctx, cfg, c.log, bootstrap.Options{Migrate: migrate})
}

func newRootCmd() *cobra.Command {
	c := &cli{out: os.Stdout}
	root := &cobra.Command{
		Use:           "gstctl",
		Short:         "Cierre GST y mantenimiento de facturación",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		c.migrateCmd(),
		c.summarizeCmd(),
		c.summarizeAllCmd(),
		c.hsnCmd(),
		c.exportSummaryCmd(),
		c.exportTallyCmd(),
		c.regeneratePDFsCmd(),
		c.tokenCmd(),
	)
	return root
}

// signalContext se cancela con SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

// ── Flags de alcance ─────────────────────────────────────────

type scope struct {
	entityType string
	entityID   string
	period     string
}

func (s *scope) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.entityType, "entity-type", "", "warehouse o store")
	cmd.Flags().StringVar(&s.entityID, "entity-id", "", "ID de la bodega o tienda")
	cmd.Flags().StringVar(&s.period, "period", "", "Período tributario MMYYYY")
	_ = cmd.MarkFlagRequired("entity-type")
	_ = cmd.MarkFlagRequired("entity-id")
	_ = cmd.MarkFlagRequired("period")
}

func (s *scope) locationType() (entity.LocationType, error) {
	t := entity.LocationType(s.entityType)
	if !t.Valid() {
		return "", fmt.Errorf("--entity-type debe ser warehouse o store, recibido %q", s.entityType)
	}
	return t, nil
}

// ── Comandos ─────────────────────────────────────────────────

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes de PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()
			app, err := c.open(ctx, true)
			if err != nil {
				return err
			}
			defer app.Close()
			fmt.Fprintln(c.out, "migraciones al día")
			return nil
		},
	}
}

func (c *cli) summarizeCmd() *cobra.Command {
	var s scope
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Consolida el resumen GST de una ubicación y período",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lt, err := s.locationType()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()
			app, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			sum, err := app.GST.SummarizePeriod(ctx, lt, s.entityID, s.period)
			if err != nil {
				return err
			}
			return c.printJSON(dto.NewGSTSummaryResponse(sum))
		},
	}
	s.bind(cmd)
	return cmd
}

func (c *cli) summarizeAllCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "summarize-all",
		Short: "Consolida el período para todas las ubicaciones con asientos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()
			app, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.GST.SummarizeAll(ctx, period)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIPO\tUBICACIÓN\tGSTIN\tSALIDA\tENTRADA\tNETO\tASIENTOS")
			for _, s := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
					s.EntityType, s.EntityID, s.GSTIN,
					s.TotalOutputGST.StringFixed(2), s.TotalInputGST.StringFixed(2),
					s.NetLiability.StringFixed(2), s.EntryCount)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "Período tributario MMYYYY")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func (c *cli) hsnCmd() *cobra.Command {
	var s scope
	cmd := &cobra.Command{
		Use:   "hsn",
		Short: "Muestra el resumen HSN del período",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lt, err := s.locationType()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()
			app, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			rows, err := app.GST.HSNSummary(ctx, lt, s.entityID, s.period)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "HSN\tTASA\tCANTIDAD\tBASE\tCGST\tSGST\tIGST")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.HSNCode, r.TaxRate.String(), r.TotalQuantity.String(), r.TaxableAmount.StringFixed(2),
					r.CGSTAmount.StringFixed(2), r.SGSTAmount.StringFixed(2), r.IGSTAmount.StringFixed(2))
			}
			return tw.Flush()
		},
	}
	s.bind(cmd)
	return cmd
}

func (c *cli) exportSummaryCmd() *cobra.Command {
	var (
		s   scope
		out string
	)
	cmd := &cobra.Command{
		Use:   "export-summary",
		Short: "Escribe el resumen GST del período en un archivo Excel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lt, err := s.locationType()
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("gst-%s-%s.xlsx", s.entityID, s.period)
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()
			app, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			return writeFile(out, func(w io.Writer) error {
				return app.GST.ExportSummary(ctx, lt, s.entityID, s.period, w)
			}, c.out)
		},
	}
	s.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Archivo de salida (por defecto gst-<entidad>-<período>.xlsx)")
	return cmd
}

func (c *cli) exportTallyCmd() *cobra.Command {
	var issuer, from, to, out string
	cmd := &cobra.Command{
		Use:   "export-tally",
		Short: "Exporta las facturas emitidas en el rango como comprobantes de Tally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()
			app, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			start, end, err := dayRange(from, to, c.cfg.App.Location())
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("tally-%s-%s.xml", from, to)
			}
			var n int
			err = writeFile(out, func(w io.Writer) error {
				var err error
				n, err = app.Invoices.ExportVouchers(ctx, issuer, start, end, w)
				return err
			}, c.out)
			if err != nil {
				return err
			}
			c.log.Info().Int("vouchers", n).Str("file", out).Msg("exportación Tally")
			return nil
		},
	}
	cmd.Flags().StringVar(&issuer, "issuer", "", "Ubicación emisora")
	cmd.Flags().StringVar(&from, "from", "", "Desde (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Hasta, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Archivo de salida")
	_ = cmd.MarkFlagRequired("issuer")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (c *cli) regeneratePDFsCmd() *cobra.Command {
	var issuer, fy string
	cmd := &cobra.Command{
		Use:   "regenerate-pdfs",
		Short: "Genera el PDF de las facturas emitidas que no lo tienen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()
			app, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.Invoices.RegeneratePDFs(ctx, repository.InvoiceFilter{IssuerID: issuer, FinancialYear: fy})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d PDF generados\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&issuer, "issuer", "", "Solo facturas de esta ubicación")
	cmd.Flags().StringVar(&fy, "financial-year", "", "Solo este año fiscal (ej. 2025-26)")
	return cmd
}

// tokenCmd emite un token de servicio para integraciones (POS, ETL contable).
// No toca la base de datos: solo necesita JWT_SECRET.
func (c *cli) tokenCmd() *cobra.Command {
	var user, role, location string
	var minutes int
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token JWT firmado para un usuario y rol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !jwt.ValidRole(role) {
				return fmt.Errorf("--role desconocido: %q", role)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			if minutes <= 0 {
				minutes = cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, user, role, location, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "ID del usuario")
	cmd.Flags().StringVar(&role, "role", "", "admin, warehouse_staff, store_staff o accountant")
	cmd.Flags().StringVar(&location, "location", "", "Bodega o tienda asignada")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

// ── Utilidades ───────────────────────────────────────────────

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dayRange convierte fechas inclusivas YYYY-MM-DD al rango [desde, hasta+1día).
func dayRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dto.DateLayout, from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--from: formato esperado %s", dto.DateLayout)
	}
	end, err := time.ParseInLocation(dto.DateLayout, to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--to: formato esperado %s", dto.DateLayout)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to anterior a --from")
	}
	return start, end.AddDate(0, 0, 1), nil
}

// writeFile escribe en path con fn; si fn falla el archivo se elimina.
func writeFile(path string, fn func(io.Writer) error, report io.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("crear %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cerrar %s: %w", path, err)
	}
	fmt.Fprintf(report, "escrito %s\n", path)
	return nil
}
