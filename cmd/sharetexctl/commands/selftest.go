package commands

import (
	"fmt"
	"io"

	"github.com/gogpu/sharetex"
	"github.com/gogpu/sharetex/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func newSelftestCmd(a *app) *cobra.Command {
	var (
		rounds      int
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Create, lock, unlock and release a linked texture",
		Long: `selftest opens a session, creates a new shared texture as configured
under "texture", exposes it to the secondary API and runs lock/unlock rounds
before releasing everything. When interop is unavailable it falls back to a
primary-only texture and reports the linked path as not supported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			svc, err := sharetex.New(a.serviceOptions(sharetex.WithRegisterer(reg))...)
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			if err := runSelftest(out, svc, a.cfg.Texture, rounds); err != nil {
				return err
			}
			if showMetrics {
				return writeMetrics(out, reg)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 3, "lock/unlock rounds")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print collected metrics when done")
	return cmd
}

func runSelftest(out io.Writer, svc *sharetex.Service, tc config.TextureConfig, rounds int) error {
	format, err := config.ParseFormat(tc.Format)
	if err != nil {
		return err
	}
	access, err := config.ParseAccess(tc.Access)
	if err != nil {
		return err
	}
	desc := sharetex.DefaultTextureDescriptor(tc.Width, tc.Height, format)
	desc.Label = "sharetexctl-selftest"

	h, err := svc.OpenSession()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "open session %d on %s (%s)\n", h, svc.Backend(), svc.State())

	lt, status, err := svc.CreateLinkedTexture(desc, 0, access)
	switch {
	case err != nil:
		_, _ = svc.CloseSession(h)
		return err
	case status == sharetex.StatusNotSupported:
		fmt.Fprintf(out, "linked texture: %s\n", status)
		st, err := svc.CreateSharedTexture(desc, 0)
		if err != nil {
			_, _ = svc.CloseSession(h)
			return err
		}
		fmt.Fprintf(out, "shared texture %dx%d token %#x\n", tc.Width, tc.Height, uintptr(st.Token))
		svc.ReleaseSharedTexture(st)
	default:
		fmt.Fprintf(out, "linked texture name %d registration %#x token %#x (%s)\n",
			lt.Name, uintptr(lt.Registration), uintptr(lt.Token), lt.Access)
		for i := range rounds {
			if err := svc.LockTexture(lt.Registration); err != nil {
				_, _ = svc.CloseSession(h)
				return fmt.Errorf("round %d: %w", i+1, err)
			}
			if err := svc.UnlockTexture(lt.Registration); err != nil {
				_, _ = svc.CloseSession(h)
				return fmt.Errorf("round %d: %w", i+1, err)
			}
		}
		fmt.Fprintf(out, "lock/unlock rounds: %d\n", rounds)
		fmt.Fprintf(out, "release: %s\n", svc.ReleaseLinkedTexture(lt))
	}

	if _, err := svc.CloseSession(h); err != nil {
		return err
	}
	fmt.Fprintf(out, "closed session %d (%s)\n", h, svc.State())
	return nil
}

func writeMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}
