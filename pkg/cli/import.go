package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

var importOut string

var importCmd = &cobra.Command{
	Use:   "import <openapi.yaml|json>",
	Short: "Convert an OpenAPI document into a service definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		def, err := service.ImportOpenAPI(data)
		if err != nil {
			return err
		}

		if importOut == "" {
			out, err := service.Marshal(def)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		}
		if err := service.Save(def, importOut); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d endpoints)\n", importOut, len(def.Endpoints))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importOut, "out", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(importCmd)
}
