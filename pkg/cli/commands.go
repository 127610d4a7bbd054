package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Fepozopo/normalmap/pkg/stdimg"
)

func newCommandsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "commands [name]",
		Short: "List engine commands and their parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := NewMetaStoreFromStdimg(stdimg.Commands)
			specs := store.Commands
			if len(args) == 1 {
				c, ok := stdimg.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown command: %s", args[0])
				}
				specs = []stdimg.CommandSpec{c}
			}
			out := cmd.OutOrStdout()

			if asJSON {
				rules := make(map[string]map[string]ValidationRule, len(specs))
				for _, c := range specs {
					rules[c.Name] = GenerateValidationRulesFromStdSpec(c)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rules)
			}
			for _, c := range specs {
				tip, err := store.GetTooltip(c.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n  usage: %s\n  %s\n\n", c.Name, c.Usage, tip)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print validation rules as JSON")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release and install it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			confirm := stdinConfirm
			if yes {
				confirm = nil
			}
			return CheckForUpdates(ctx, cmd.OutOrStdout(), loggerFromContext(ctx), confirm)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "install without asking")
	return cmd
}
