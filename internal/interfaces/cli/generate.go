package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/cdforge/internal/application/generation"
)

// GenerateOutput summarizes a generation run.
type GenerateOutput struct {
	SessionID  string   `json:"session_id"`
	UserDir    string   `json:"user_dir"`
	SMILES     string   `json:"smiles"`
	UnitSMILES []string `json:"smiles_unidades,omitempty"`
	Artifacts  int      `json:"artifacts"`
	Duration   string   `json:"duration"`
}

func (o GenerateOutput) String() string {
	return fmt.Sprintf("session:  %s\nuser_dir: %s\nsmiles:   %s\nduration: %s",
		o.SessionID, o.UserDir, o.SMILES, o.Duration)
}

func (o GenerateOutput) TableHeaders() []string { return []string{"FIELD", "VALUE"} }

func (o GenerateOutput) TableRows() [][]string {
	return [][]string{
		{"session_id", o.SessionID},
		{"user_dir", o.UserDir},
		{"smiles", o.SMILES},
		{"units", strings.Join(o.UnitSMILES, " ")},
		{"artifacts", fmt.Sprint(o.Artifacts)},
		{"duration", o.Duration},
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		pdbOut   string
		imageOut string
	)

	cmd := &cobra.Command{
		Use:   "generate <descriptor>",
		Short: "Build a cyclodextrin from a canonical unit descriptor",
		Long: "Build, render and store a cyclodextrin locally.  The descriptor is the\n" +
			"canonical string accepted by POST /generar_estructura, for example\n" +
			"\"glucose_a14 glucose_a14 glucose_a14 glucose_a14 glucose_a14 glucose_a14\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := buildApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Generation.Generate(cmd.Context(), &generation.GenerateInput{Descriptor: args[0]})
			if err != nil {
				return err
			}
			if pdbOut != "" {
				if err := os.WriteFile(pdbOut, []byte(res.PDB), 0o644); err != nil {
					return fmt.Errorf("write pdb: %w", err)
				}
			}
			if imageOut != "" {
				if err := os.WriteFile(imageOut, res.Image, 0o644); err != nil {
					return fmt.Errorf("write image: %w", err)
				}
			}

			return PrintResult(cmd, GenerateOutput{
				SessionID:  res.SessionID,
				UserDir:    res.UserDir,
				SMILES:     res.SMILES,
				UnitSMILES: res.UnitSMILES,
				Artifacts:  len(res.Artifacts),
				Duration:   res.Duration.String(),
			})
		},
	}

	cmd.Flags().StringVar(&pdbOut, "pdb-out", "", "also write the assembled PDB to this path")
	cmd.Flags().StringVar(&imageOut, "image-out", "", "also write the 2D depiction PNG to this path")
	return cmd
}

//Personal.AI order the ending
