package system

import (
	"fmt"

	"github.com/spf13/cobra"

	pasetotoken "github.com/sarahsindone/sbrp-application/pkg/paseto"
)

func NewGenKeysCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "genkeys",
		Short: "Generate PASETO v4 keys for authentication.paseto",
		RunE: func(cmd *cobra.Command, args []string) error {
			var keys pasetotoken.Keys
			switch pasetotoken.Mode(mode) {
			case pasetotoken.ModeLocal:
				keys = pasetotoken.NewLocalKeys()
			case pasetotoken.ModePublic:
				keys = pasetotoken.NewPublicKeys()
			default:
				return fmt.Errorf("unknown mode %q (use local|public)", mode)
			}

			hex := keys.Hex()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "authentication:")
			fmt.Fprintln(out, "  paseto:")
			fmt.Fprintf(out, "    mode: %s\n", hex.Mode)
			if hex.SymmetricHex != "" {
				fmt.Fprintf(out, "    local_key_hex: %s\n", hex.SymmetricHex)
			}
			if hex.SecretHex != "" {
				fmt.Fprintf(out, "    secret_key_hex: %s\n", hex.SecretHex)
				fmt.Fprintf(out, "    public_key_hex: %s\n", hex.PublicHex)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(pasetotoken.ModeLocal), "local|public")

	return cmd
}
