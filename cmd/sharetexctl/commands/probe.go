package commands

import (
	"fmt"

	"github.com/gogpu/sharetex"
	"github.com/spf13/cobra"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Open the shared device and report interop support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := sharetex.New(a.serviceOptions()...)
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend:  %s\n", svc.Backend())

			h, err := svc.OpenSession()
			if err != nil {
				fmt.Fprintf(out, "device:   failed\n")
				return err
			}
			fmt.Fprintf(out, "device:   ok\n")
			fmt.Fprintf(out, "state:    %s\n", svc.State())
			fmt.Fprintf(out, "interop:  %t\n", svc.InteropAvailable())

			_, err = svc.CloseSession(h)
			return err
		},
	}
}
