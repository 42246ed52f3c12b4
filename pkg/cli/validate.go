package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition.yaml>",
	Short: "Validate a service definition without serving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := service.Load(args[0])
		if err != nil {
			return err
		}
		if len(def.Models) > 0 {
			if _, err := def.CompileModels(); err != nil {
				return err
			}
		}
		fmt.Printf("%s: ok (%d endpoints)\n", def.Name, len(def.Endpoints))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
