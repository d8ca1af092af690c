package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/hbnb/internal/store"
)

func init() {
	rootCmd.AddCommand(typesCmd)
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Print the type registry as JSON",
	Long: `Print every known type tag with its declared attributes, their types
and default values. Uses --types when given, otherwise the built-in registry.`,
	Args: cobra.NoArgs,
	RunE: runTypes,
}

func runTypes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	types, err := store.LoadTypes(cfg.TypesFile)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	return outputJSON(cmd.OutOrStdout(), describeTypes(types))
}

// describeTypes lists the registry in tag order.
func describeTypes(types *store.Types) []TypeInfo {
	infos := make([]TypeInfo, 0, len(types.Tags()))
	for _, tag := range types.Tags() {
		schema, _ := types.Lookup(tag)
		fields := make([]FieldInfo, 0, len(schema.Fields))
		for _, f := range schema.Fields {
			fields = append(fields, FieldInfo{Name: f.Name, Type: string(f.Type), Default: f.Default})
		}
		infos = append(infos, TypeInfo{Tag: tag, Fields: fields})
	}
	return infos
}
