package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bsprep/internal/app"
	"bsprep/internal/capabilities"
	"bsprep/internal/color"
	"bsprep/internal/failure"
	"bsprep/internal/session"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	prepareCapsPath string
	prepareOutput   string
	prepareWait     bool
)

// preparedDocument is written to the output after a successful prepare.
type preparedDocument struct {
	Capabilities interface{} `json:"capabilities"`
	// Specs is set on reruns and replaces the runner's spec list.
	Specs []string `json:"specs,omitempty"`
}

func newPrepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare a capabilities file for a BrowserStack session",
		Long: `Reads capabilities (a list, or a multiremote map of name -> {capabilities: ...})
from a JSON or YAML file, prepares them and prints the result as JSON.

Preparation uploads the configured app, resolves buildIdentifier templates
(${BUILD_NUMBER}, ${DATE_TIME}) and, when browserstackLocal is enabled,
starts the BrowserStack Local tunnel.

Without --wait the tunnel is stopped again before bsprep exits. With --wait
bsprep keeps the tunnel running until it receives SIGINT or SIGTERM.

Exit status is 2 when preparation fails in a way the test run must not be
retried (invalid app, failed upload, tunnel failure).`,
		Args: cobra.NoArgs,
		RunE: runPrepare,
	}

	cmd.Flags().StringVar(&prepareCapsPath, "caps", "", "Capabilities file (JSON or YAML)")
	cmd.Flags().StringVarP(&prepareOutput, "output", "o", "", "Write prepared capabilities to this file instead of stdout")
	cmd.Flags().BoolVar(&prepareWait, "wait", false, "Keep the tunnel running until interrupted")
	_ = cmd.MarkFlagRequired("caps")

	return cmd
}

func runPrepare(cmd *cobra.Command, args []string) error {
	caps, err := readCapabilities(prepareCapsPath)
	if err != nil {
		return failure.Severe("invalid capabilities", err)
	}

	application, err := app.NewApplication(app.NewConfig(configPath, debug, rootCmd.Version))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	preparer, result, err := application.Prepare(ctx, caps)
	if err != nil {
		// a tunnel left behind by a failed start is still torn down
		if _, stopErr := preparer.OnComplete(ctx); stopErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), color.Warning(stopErr.Error()))
		}
		return err
	}

	if err := writePrepared(cmd.OutOrStdout(), prepareOutput, caps, result); err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), caps, result)

	var pid int
	if prepareWait {
		pid, err = app.WaitAndComplete(ctx, preparer)
	} else {
		pid, err = preparer.OnComplete(ctx)
	}
	if err != nil {
		return err
	}
	if pid > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), color.Warning(fmt.Sprintf("Tunnel process %d killed", pid)))
	}
	return nil
}

// readCapabilities loads a capability container from a JSON or YAML file.
// Files ending in .json are parsed as JSON, everything else as YAML.
func readCapabilities(path string) (*capabilities.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capabilities file: %w", err)
	}

	var raw interface{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, failure.Invalid("capabilities", "cannot parse %s: %v", path, err)
	}

	return capabilities.FromValue(raw)
}

func writePrepared(stdout io.Writer, outputPath string, caps *capabilities.Container, result *session.Result) error {
	doc := preparedDocument{Capabilities: caps.Value(), Specs: result.Specs}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode prepared capabilities: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}

func printSummary(w io.Writer, caps *capabilities.Container, result *session.Result) {
	fmt.Fprintln(w, color.Success(fmt.Sprintf("✓ Prepared %d capability set(s) (%s)", caps.Len(), caps.Kind())))
	if result.App != "" {
		fmt.Fprintln(w, color.KeyValue("App", result.App))
	}
	if result.LocalIdentifier != "" {
		fmt.Fprintln(w, color.KeyValue("Local identifier", result.LocalIdentifier))
	}
	if result.Specs != nil {
		fmt.Fprintln(w, color.KeyValue("Rerun specs", strings.Join(result.Specs, ", ")))
	}
}
