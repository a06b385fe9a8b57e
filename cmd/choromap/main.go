package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/choromap/internal/config"
	"github.com/san-kum/choromap/internal/frames"
	"github.com/san-kum/choromap/internal/logger"
	"github.com/san-kum/choromap/internal/pipeline"
	"github.com/san-kum/choromap/internal/render"
	"github.com/san-kum/choromap/internal/reshape"
	"github.com/san-kum/choromap/internal/series"
	"github.com/san-kum/choromap/internal/storage"
	"github.com/san-kum/choromap/internal/tui"
)

var (
	configFile string
	preset     string
	envFile    string
	logLevel   string
	logFormat  string

	// source table
	input         string
	inputFormat   string
	tableName     string
	query         string
	category      string
	form          string
	dateField     string
	locationField string
	categoryField string
	valueField    string
	smooth        bool

	// frame selection
	frameCount string
	begin      string
	keying     string

	// rendering
	geometry    string
	property    string
	width       int
	height      int
	title       string
	ramp        string
	norm        string
	labels      bool
	imageFormat string

	// output
	framesDir  string
	exportsDir string
	saveName   string
	fps        int
	makeGIF    bool
	makeVideo  bool
	encoder    string
	workers    int
	matrixCSV  bool
	outFile    string
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "choromap",
		Short:         "animated choropleth maps from location/date tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "preset as dataset/name, e.g. covid/cases")
	pf.StringVar(&envFile, "env", ".env", "dotenv file")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVarP(&input, "input", "i", "", "source table (csv or sqlite)")
	pf.StringVar(&inputFormat, "format", "", "source format: csv or sqlite (default from extension)")
	pf.StringVar(&tableName, "table", "", "sqlite table name")
	pf.StringVar(&query, "query", "", "sqlite query")
	pf.StringVarP(&category, "category", "c", "", "category to map")
	pf.StringVar(&form, "form", "wide", "table form: wide or long")
	pf.StringVar(&dateField, "date-field", "date", "date column")
	pf.StringVar(&locationField, "location-field", "location", "location column")
	pf.StringVar(&categoryField, "category-field", "category", "category column (long form)")
	pf.StringVar(&valueField, "value-field", "value", "value column (long form)")
	pf.BoolVar(&smooth, "smooth", false, "7-day trailing average")
	pf.StringVarP(&frameCount, "frames", "n", "all", "number of frames, or 'all'")
	pf.StringVar(&begin, "begin", "", "first frame date (YYYY-MM-DD)")
	pf.StringVar(&keying, "keying", "date", "frame names: date or index")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render frames and animation",
		RunE:  runRender,
	}
	rf := renderCmd.Flags()
	rf.StringVarP(&geometry, "geometry", "g", "", "GeoJSON file with location shapes")
	rf.StringVar(&property, "property", "", "feature property holding the location id (default feature id)")
	rf.IntVar(&width, "width", config.DefaultWidth, "frame width in pixels")
	rf.IntVar(&height, "height", config.DefaultHeight, "frame height in pixels")
	rf.StringVar(&title, "title", "", "frame title")
	rf.StringVar(&ramp, "ramp", "OrRd", "color ramp ("+strings.Join(render.RampNames(), ", ")+")")
	rf.StringVar(&norm, "norm", "log", "normalization: linear or log")
	rf.BoolVar(&labels, "labels", false, "draw location labels")
	rf.StringVar(&imageFormat, "image-format", "png", "frame format: png or svg")
	rf.StringVar(&framesDir, "frames-dir", config.DefaultFramesRoot, "root directory for frames")
	rf.StringVar(&exportsDir, "exports-dir", config.DefaultExportsDir, "directory for animations")
	rf.StringVar(&saveName, "save-name", "", "run name (default category)")
	rf.IntVar(&fps, "fps", config.DefaultFPS, "animation frame rate")
	rf.BoolVar(&makeGIF, "gif", true, "assemble a gif")
	rf.BoolVar(&makeVideo, "video", false, "assemble an mp4 with ffmpeg")
	rf.StringVar(&encoder, "encoder", "builtin", "gif encoder: builtin or gifski")
	rf.IntVar(&workers, "workers", config.DefaultWorkers, "parallel frame renderers")
	rf.BoolVar(&matrixCSV, "matrix-csv", false, "also export the dense matrix as csv")

	prepCmd := &cobra.Command{
		Use:   "prep",
		Short: "reshape the table and write the dense matrix as csv",
		RunE:  runPrep,
	}
	prepCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	datesCmd := &cobra.Command{
		Use:   "dates",
		Short: "print the frame date sequence",
		RunE:  runDates,
	}

	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "list the categories in the source table",
		RunE:  runCategories,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [location]",
		Short: "plot one location's series",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "browse the matrix date by date",
		RunE:  runBrowse,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list previous runs",
		RunE:  listRuns,
	}
	runsCmd.Flags().StringVar(&exportsDir, "exports-dir", config.DefaultExportsDir, "directory for animations")

	presetsCmd := &cobra.Command{
		Use:   "presets [dataset]",
		Short: "list built-in presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(renderCmd, prepCmd, datesCmd, categoriesCmd, plotCmd, browseCmd, runsCmd, presetsCmd)
	return rootCmd
}

// loadConfig layers defaults, config file, preset, environment and
// explicitly set flags, in that order. With validate set the result is
// checked the same way for every command.
func loadConfig(cmd *cobra.Command, validate bool) (*config.Config, error) {
	config.LoadEnv(envFile)

	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		dataset, name, _ := strings.Cut(preset, "/")
		p := config.GetPreset(dataset, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(dataset))
		}
		cfg.Apply(p)
	}

	cfg.ApplyEnv()

	flags := cmd.Flags()
	setString := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setInt := func(name string, dst *int, v int) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool, v bool) {
		if flags.Changed(name) {
			*dst = v
		}
	}

	setString("log-level", &cfg.Log.Level, logLevel)
	setString("log-format", &cfg.Log.Format, logFormat)
	setString("input", &cfg.Input.Path, input)
	setString("format", &cfg.Input.Format, inputFormat)
	setString("table", &cfg.Input.Table, tableName)
	setString("query", &cfg.Input.Query, query)
	setString("category", &cfg.Reshape.Category, category)
	setString("form", &cfg.Reshape.Form, form)
	setString("date-field", &cfg.Reshape.DateField, dateField)
	setString("location-field", &cfg.Reshape.LocationField, locationField)
	setString("category-field", &cfg.Reshape.CategoryField, categoryField)
	setString("value-field", &cfg.Reshape.ValueField, valueField)
	setBool("smooth", &cfg.Reshape.Smooth, smooth)
	setString("frames", &cfg.Frames.Count, frameCount)
	setString("begin", &cfg.Frames.Begin, begin)
	setString("keying", &cfg.Frames.Keying, keying)
	setString("geometry", &cfg.Geometry.Path, geometry)
	setString("property", &cfg.Geometry.Property, property)
	setInt("width", &cfg.Render.Width, width)
	setInt("height", &cfg.Render.Height, height)
	setString("title", &cfg.Render.Title, title)
	setString("ramp", &cfg.Render.Ramp, ramp)
	setString("norm", &cfg.Render.Norm, norm)
	setBool("labels", &cfg.Render.Labels, labels)
	setString("image-format", &cfg.Render.Format, imageFormat)
	setString("frames-dir", &cfg.Output.FramesRoot, framesDir)
	setString("exports-dir", &cfg.Output.ExportsDir, exportsDir)
	setString("save-name", &cfg.Output.SaveName, saveName)
	setInt("fps", &cfg.Animation.FPS, fps)
	setBool("gif", &cfg.Animation.GIF, makeGIF)
	setBool("video", &cfg.Animation.Video, makeVideo)
	setString("encoder", &cfg.Animation.Encoder, encoder)
	setInt("workers", &cfg.Workers, workers)
	setBool("matrix-csv", &cfg.Output.MatrixCSV, matrixCSV)

	if cfg.Input.Path == "" {
		return nil, &series.ConfigurationError{Field: "input", Reason: "a source table is required (--input or config)"}
	}
	cfg.Finalize()
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	rep, err := pipeline.Run(cmd.Context(), cfg, logger.L())
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("choromap") + labelStyle.Render("  run ") + valueStyle.Render(rep.RunID))
	fmt.Printf("  %s %s\n", labelStyle.Render("frames   "), valueStyle.Render(fmt.Sprintf("%d in %s", len(rep.Frames), rep.FrameDir)))
	fmt.Printf("  %s %s → %s\n", labelStyle.Render("dates    "),
		valueStyle.Render(series.FormatDate(rep.Dates[0])), valueStyle.Render(series.FormatDate(rep.Dates[len(rep.Dates)-1])))
	for _, a := range rep.Artifacts {
		fmt.Printf("  %s %s\n", labelStyle.Render("artifact "), valueStyle.Render(a))
	}
	if len(rep.Unmatched) > 0 {
		fmt.Printf("  %s %s\n", warnStyle.Render("no shape "), strings.Join(rep.Unmatched, ", "))
	}
	fmt.Printf("  %s %s\n", labelStyle.Render("elapsed  "), valueStyle.Render(rep.Elapsed.Round(time.Millisecond).String()))
	return nil
}

func runPrep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	m, err := pipeline.Matrix(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.WriteMatrixCSV(os.Stdout, m)
	}
	if err := storage.SaveMatrixCSV(outFile, m); err != nil {
		return err
	}
	logger.L().Info("matrix written", "path", outFile, "locations", m.Len(), "days", m.Days())
	return nil
}

func runDates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	k, err := cfg.Keying()
	if err != nil {
		return err
	}
	m, err := pipeline.Matrix(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	dates, err := pipeline.Dates(cfg, m)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tDATE\tFILE\tIN RANGE")
	for i, d := range dates {
		_, in := m.DateIndex(d)
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", i, series.FormatDate(d), frames.Name(k, i, d, cfg.Render.Format), in)
	}
	return w.Flush()
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	opts, err := cfg.ReshapeOptions()
	if err != nil {
		return err
	}
	tbl, err := pipeline.LoadTable(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	cats, err := reshape.Categories(tbl, opts)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("categories") + labelStyle.Render(fmt.Sprintf("  (%s form, %d rows)", opts.Form, tbl.Len())))
	for _, c := range cats {
		fmt.Printf("  %s\n", c)
	}
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	m, err := pipeline.Matrix(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	loc := args[0]
	row, ok := m.Row(loc)
	if !ok {
		return &series.SchemaError{Column: cfg.Reshape.LocationField, Reason: fmt.Sprintf("no location %q", loc)}
	}
	if !m.Observed(loc) {
		fmt.Println(warnStyle.Render("  no observations; series is the zero fallback"))
	}

	caption := fmt.Sprintf("%s · %s  %s → %s", loc, m.Category(),
		series.FormatDate(m.MinDate()), series.FormatDate(m.MaxDate()))
	graph := asciigraph.Plot(row,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	m, err := pipeline.Matrix(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	dates, err := pipeline.Dates(cfg, m)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewBrowser(m, dates), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	config.LoadEnv(envFile)
	dir := exportsDir
	if v := os.Getenv("CHOROMAP_EXPORTS_DIR"); v != "" && !cmd.Flags().Changed("exports-dir") {
		dir = v
	}

	st := storage.New("", dir)
	runs, err := st.ListRuns()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tTIME\tFRAMES\tFROM\tTO\tSMOOTH\tARTIFACTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%v\t%d\n",
			run.ID,
			run.Category,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.FirstDate,
			run.LastDate,
			run.Smooth,
			len(run.Artifacts),
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	datasets := make([]string, 0, len(config.Presets))
	if len(args) == 1 {
		datasets = append(datasets, args[0])
	} else {
		for name := range config.Presets {
			datasets = append(datasets, name)
		}
		sort.Strings(datasets)
	}

	for _, ds := range datasets {
		presets := config.ListPresets(ds)
		if presets == nil {
			return fmt.Errorf("unknown dataset: %s", ds)
		}
		sort.Strings(presets)
		fmt.Println(titleStyle.Render(ds))
		for _, p := range presets {
			fmt.Printf("  %s/%s\n", ds, p)
		}
	}
	return nil
}
