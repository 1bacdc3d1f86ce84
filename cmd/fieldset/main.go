// Command fieldset validates data files against a schema described in YAML.
//
//	fieldset validate --schema user.yaml --input payload.json
//
// The schema file declares named fields with their type, strictness,
// nullability and defaults; the input file is JSON or YAML. On success the
// canonical dump of the loaded instance is printed; on validation failure
// the raw error tree is printed and the exit code is 1.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/fieldset"
	"github.com/reoring/fieldset/i18n"
	"github.com/reoring/fieldset/source"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fieldset",
		Short:         "Validate and transform structured data against declarative schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	var (
		schemaPath  string
		inputPath   string
		ignoreExtra bool
		lang        string
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load an input file against a schema definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			if !verbose {
				log = log.Level(zerolog.WarnLevel)
			}
			i18n.SetLanguage(lang)

			st, err := loadSchemaFile(schemaPath)
			if err != nil {
				log.Error().Err(err).Str("schema", schemaPath).Msg("cannot build schema")
				return err
			}
			log.Info().Str("schema", st.Name()).Int("fields", len(st.Fields())).Msg("schema built")

			raw, err := loadInputFile(inputPath)
			if err != nil {
				log.Error().Err(err).Str("input", inputPath).Msg("cannot read input")
				return err
			}

			var opts []fieldset.LoadOption
			if ignoreExtra {
				opts = append(opts, fieldset.WithIgnoreExtra())
			}
			inst, err := st.Load(raw, opts...)
			if err != nil {
				if tree, ok := fieldset.AsErrorTree(err); ok {
					log.Warn().Int("errors", tree.Len()).Msg("validation failed")
					return printJSON(cmd, map[string]any{"valid": false, "errors": tree.Raw()})
				}
				return err
			}

			dumped, err := inst.Dump()
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"valid": true, "value": dumped})
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "YAML schema definition file")
	cmd.Flags().StringVar(&inputPath, "input", "", "JSON or YAML input file")
	cmd.Flags().BoolVar(&ignoreExtra, "ignore-extra", false, "drop unknown input keys instead of reporting them")
	cmd.Flags().StringVar(&lang, "lang", "en", "message language (en/ja)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable info logs")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := gojson.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// schemaDef is the on-disk YAML form of a schema declaration.
type schemaDef struct {
	Name    string     `yaml:"name"`
	Unknown string     `yaml:"unknown"` // "error" (default) or "ignore"
	Fields  []fieldDef `yaml:"fields"`
}

type fieldDef struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"` // string|int|float|bool|any
	Required *bool  `yaml:"required"`
	Nullable bool   `yaml:"nullable"`
	Strict   *bool  `yaml:"strict"`
	Default  any    `yaml:"default"`
	LoadKey  string `yaml:"load_key"`
	DumpKey  string `yaml:"dump_key"`
	Frozen   bool   `yaml:"frozen"`
}

func loadSchemaFile(path string) (*fieldset.SchemaType, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def schemaDef
	if err := yaml.Unmarshal(b, &def); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return buildSchema(def)
}

func buildSchema(def schemaDef) (*fieldset.SchemaType, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("schema definition needs a name")
	}
	b := fieldset.New(def.Name)
	if strings.EqualFold(def.Unknown, "ignore") {
		b.Unknown(fieldset.UnknownIgnore)
	}
	for _, f := range def.Fields {
		spec, err := buildFieldSpec(f)
		if err != nil {
			return nil, err
		}
		b.Field(f.Name, spec)
	}
	return b.Build()
}

func buildFieldSpec(f fieldDef) (*fieldset.FieldSpec, error) {
	var spec *fieldset.FieldSpec
	switch strings.ToLower(f.Type) {
	case "string", "str":
		spec = fieldset.String()
	case "int", "integer":
		spec = fieldset.Int()
	case "float", "number":
		spec = fieldset.Float()
	case "bool", "boolean":
		spec = fieldset.Bool()
	case "any", "":
		spec = fieldset.Any()
	default:
		return nil, fmt.Errorf("field %q: unsupported type %q", f.Name, f.Type)
	}
	if f.Required != nil && !*f.Required {
		spec.Optional()
	}
	if f.Nullable {
		spec.Nullable()
	}
	if f.Strict != nil {
		spec.Strict(*f.Strict)
	}
	if f.Default != nil {
		spec.Default(f.Default)
	}
	if f.LoadKey != "" {
		spec.LoadKey(f.LoadKey)
	}
	if f.DumpKey != "" {
		spec.DumpKey(f.DumpKey)
	}
	if f.Frozen {
		spec.Frozen()
	}
	return spec, nil
}

// loadInputFile picks the decoder from the file extension; unknown
// extensions fall back to JSON.
func loadInputFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return source.YAMLBytes(b)
	default:
		return source.JSONBytes(b)
	}
}
