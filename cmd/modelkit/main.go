package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/modelkit/generator"
	"github.com/mmrzaf/modelkit/internal/config"
	"github.com/mmrzaf/modelkit/logging"
	"github.com/mmrzaf/modelkit/store/postgres"
	"github.com/mmrzaf/modelkit/store/sqlite"
)

var (
	settingsPath string
	logLevel     string
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "modelkit",
		Short: "Model field value generators",
	}

	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", cfg.SettingsPath, "Generator settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(kindsCmd())
	rootCmd.AddCommand(settingsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRegistry() (*generator.Registry, error) {
	reg := generator.NewRegistry()
	if settingsPath == "" {
		return reg, nil
	}
	settings, err := generator.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	if err := reg.Apply(settings); err != nil {
		return nil, err
	}
	logging.New("modelkit", logLevel).Debug("settings applied", "path", settingsPath)
	return reg, nil
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate values",
	}

	var count int
	cmd.PersistentFlags().IntVar(&count, "count", 1, "Number of values")

	emit := func(gen generator.ValueGenerator, ctx generator.Context) error {
		for i := 0; i < count; i++ {
			value, err := gen.Generate(ctx)
			if err != nil {
				return err
			}
			fmt.Println(value)
		}
		return nil
	}

	var (
		tokenLength    int
		tokenPool      string
		tokenPrefix    string
		tokenSuffix    string
		tokenUppercase bool
	)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Generate random tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			gen, err := reg.Resolve("token", nil, "")
			if err != nil {
				return err
			}

			overrides := generator.Config{}
			if cmd.Flags().Changed("length") {
				overrides["length"] = tokenLength
			}
			if cmd.Flags().Changed("pool") {
				overrides["pool"] = tokenPool
			}
			if cmd.Flags().Changed("prefix") {
				overrides["prefix"] = tokenPrefix
			}
			if cmd.Flags().Changed("suffix") {
				overrides["suffix"] = tokenSuffix
			}
			if cmd.Flags().Changed("uppercase") {
				overrides["uppercase"] = tokenUppercase
			}
			if len(overrides) > 0 {
				gen = gen.SetConfig(overrides)
			}

			return emit(gen, generator.Context{})
		},
	}
	tokenCmd.Flags().IntVar(&tokenLength, "length", 128, "Token length")
	tokenCmd.Flags().StringVar(&tokenPool, "pool", "auto", "Character pool (alpha|numeric|alphanumeric|hex|auto)")
	tokenCmd.Flags().StringVar(&tokenPrefix, "prefix", "", "Literal prefix")
	tokenCmd.Flags().StringVar(&tokenSuffix, "suffix", "", "Literal suffix")
	tokenCmd.Flags().BoolVar(&tokenUppercase, "uppercase", false, "Uppercase the result")

	var (
		uuidVersion   string
		uuidFormat    string
		uuidPrefix    string
		uuidSuffix    string
		uuidNamespace string
		uuidName      string
	)

	uuidCmd := &cobra.Command{
		Use:   "uuid",
		Short: "Generate UUIDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			gen, err := reg.Resolve("uuid", nil, "")
			if err != nil {
				return err
			}

			overrides := generator.Config{}
			if cmd.Flags().Changed("version") {
				overrides["version"] = uuidVersion
			}
			if cmd.Flags().Changed("format") {
				overrides["format"] = uuidFormat
			}
			if cmd.Flags().Changed("prefix") {
				overrides["prefix"] = uuidPrefix
			}
			if cmd.Flags().Changed("suffix") {
				overrides["suffix"] = uuidSuffix
			}
			if cmd.Flags().Changed("namespace") {
				overrides["namespace"] = uuidNamespace
			}
			if cmd.Flags().Changed("name") {
				overrides["name"] = uuidName
			}
			if len(overrides) > 0 {
				gen = gen.SetConfig(overrides)
			}

			return emit(gen, generator.Context{})
		},
	}
	uuidCmd.Flags().StringVar(&uuidVersion, "version", "ordered", "UUID version (ordered|v1|v3|v4|v5)")
	uuidCmd.Flags().StringVar(&uuidFormat, "format", "string", "Output format (string|hex|binary)")
	uuidCmd.Flags().StringVar(&uuidPrefix, "prefix", "", "Literal prefix")
	uuidCmd.Flags().StringVar(&uuidSuffix, "suffix", "", "Literal suffix")
	uuidCmd.Flags().StringVar(&uuidNamespace, "namespace", "", "Namespace UUID for v3/v5")
	uuidCmd.Flags().StringVar(&uuidName, "name", "", "Name for v3/v5")

	var (
		slugSeparator string
		slugLanguage  string
		slugLowercase bool
		slugMaxLength int
		slugPrefix    string
		slugSuffix    string
		uniqueDB      string
		uniqueTable   string
		uniqueColumn  string
	)

	slugCmd := &cobra.Command{
		Use:   "slug <source>",
		Short: "Generate a slug from source text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			gen, err := reg.Resolve("slug", nil, "")
			if err != nil {
				return err
			}

			overrides := generator.Config{}
			if cmd.Flags().Changed("separator") {
				overrides["separator"] = slugSeparator
			}
			if cmd.Flags().Changed("language") {
				overrides["language"] = slugLanguage
			}
			if cmd.Flags().Changed("lowercase") {
				overrides["lowercase"] = slugLowercase
			}
			if cmd.Flags().Changed("max-length") {
				overrides["max_length"] = slugMaxLength
			}
			if cmd.Flags().Changed("prefix") {
				overrides["prefix"] = slugPrefix
			}
			if cmd.Flags().Changed("suffix") {
				overrides["suffix"] = slugSuffix
			}

			ctx := generator.Context{Source: args[0]}

			if uniqueDB != "" {
				if uniqueTable == "" || uniqueColumn == "" {
					return fmt.Errorf("--unique-table and --unique-column required with --unique-db")
				}
				exists, closeStore, err := openUniquenessStore(uniqueDB, uniqueTable)
				if err != nil {
					return err
				}
				defer closeStore()
				ctx.Exists = exists
				ctx.Field = uniqueColumn
				overrides["unique"] = true
			}

			if len(overrides) > 0 {
				gen = gen.SetConfig(overrides)
			}
			return emit(gen, ctx)
		},
	}
	slugCmd.Flags().StringVar(&slugSeparator, "separator", "-", "Word separator")
	slugCmd.Flags().StringVar(&slugLanguage, "language", "en", "Transliteration language")
	slugCmd.Flags().BoolVar(&slugLowercase, "lowercase", true, "Lowercase the result")
	slugCmd.Flags().IntVar(&slugMaxLength, "max-length", 0, "Maximum length")
	slugCmd.Flags().StringVar(&slugPrefix, "prefix", "", "Literal prefix")
	slugCmd.Flags().StringVar(&slugSuffix, "suffix", "", "Literal suffix")
	slugCmd.Flags().StringVar(&uniqueDB, "unique-db", "", "Database (postgres DSN or sqlite path) for uniqueness checks")
	slugCmd.Flags().StringVar(&uniqueTable, "unique-table", "", "Table for uniqueness checks")
	slugCmd.Flags().StringVar(&uniqueColumn, "unique-column", "", "Column for uniqueness checks")

	cmd.AddCommand(tokenCmd, uuidCmd, slugCmd)
	return cmd
}

// openUniquenessStore connects the slug uniqueness predicate to a database
// named on the command line; postgres DSNs are recognized by shape, anything
// else is treated as a sqlite path.
func openUniquenessStore(dsn, table string) (generator.ExistsFunc, func(), error) {
	log := logging.New("modelkit", logLevel)

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		db, err := postgres.Open(dsn)
		if err != nil {
			return nil, nil, err
		}
		checker, err := postgres.New(db, table)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Debug("uniqueness checks against postgres", "dsn", postgres.RedactDSN(dsn))
		return checker.ExistsFunc(), func() { db.Close() }, nil
	}

	db, err := sqlite.Open(dsn)
	if err != nil {
		return nil, nil, err
	}
	checker, err := sqlite.New(db, table)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Debug("uniqueness checks against sqlite", "path", dsn)
	return checker.ExistsFunc(), func() { db.Close() }, nil
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <kind> <value>",
		Short: "Validate a value against a generator kind",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			gen, err := reg.Resolve(args[0], nil, "")
			if err != nil {
				return err
			}
			if !gen.Validate(args[1], generator.Context{}) {
				return fmt.Errorf("value is not a valid %s", args[0])
			}
			fmt.Printf("Value is a valid %s\n", args[0])
			return nil
		},
	}
}

func kindsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List resolvable generator kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}

			type kindInfo struct {
				Kind   string `json:"kind"`
				Sample string `json:"sample"`
			}
			var list []kindInfo
			for _, kind := range reg.Kinds() {
				gen, err := reg.Resolve(kind, nil, "")
				if err != nil {
					return err
				}
				sample, err := gen.Generate(generator.Context{Source: "Sample Text"})
				if err != nil {
					return err
				}
				if len(sample) > 50 {
					sample = sample[:47] + "..."
				}
				list = append(list, kindInfo{Kind: kind, Sample: sample})
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tSAMPLE")
			for _, k := range list {
				fmt.Fprintf(w, "%s\t%s\n", k.Kind, k.Sample)
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	return cmd
}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect generator settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the loaded settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if settingsPath == "" {
				return fmt.Errorf("no settings file: set --settings or MODELKIT_SETTINGS")
			}
			settings, err := generator.LoadSettings(settingsPath)
			if err != nil {
				return err
			}
			data, _ := yaml.Marshal(settings)
			fmt.Println(string(data))
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if settingsPath == "" {
				return fmt.Errorf("no settings file: set --settings or MODELKIT_SETTINGS")
			}
			settings, err := generator.LoadSettings(settingsPath)
			if err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}
			reg := generator.NewRegistry()
			if err := reg.Apply(settings); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}
			fmt.Printf("Settings file '%s' is valid\n", settingsPath)
			return nil
		},
	}

	cmd.AddCommand(showCmd, checkCmd)
	return cmd
}
