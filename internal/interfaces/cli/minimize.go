package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/cdforge/internal/application/minimization"
)

// MinimizeOutput summarizes a minimization run.
type MinimizeOutput struct {
	SessionID string `json:"session_id,omitempty"`
	Output    string `json:"output,omitempty"`
	PDB       string `json:"pdb,omitempty"`
	Duration  string `json:"duration"`
}

func (o MinimizeOutput) String() string {
	if o.Output == "" {
		return o.PDB
	}
	return fmt.Sprintf("minimized structure written to %s (%s)", o.Output, o.Duration)
}

func newMinimizeCmd() *cobra.Command {
	var (
		ref string
		out string
	)

	cmd := &cobra.Command{
		Use:   "minimize <file.pdb|->",
		Short: "Minimize a PDB structure with the force field",
		Long: "Minimize a PDB structure inside an existing session directory.  Pass - to\n" +
			"read from stdin.  --ref is a session id or a user_dir returned by\n" +
			"generate.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdb, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			a, _, err := buildApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Minimization.Minimize(cmd.Context(), &minimization.MinimizeInput{PDB: pdb, Ref: ref})
			if err != nil {
				return err
			}

			o := MinimizeOutput{SessionID: res.SessionID, Duration: res.Duration.String()}
			if out != "" {
				if err := os.WriteFile(out, []byte(res.PDB), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				o.Output = out
			} else {
				o.PDB = res.PDB
			}
			return PrintResult(cmd, o)
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "session id or user_dir to minimize in")
	_ = cmd.MarkFlagRequired("ref")
	cmd.Flags().StringVar(&out, "out", "", "write the minimized PDB to this path instead of stdout")
	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

//Personal.AI order the ending
