// Command ballpivot reconstructs a triangle mesh from an oriented PLY point
// cloud using the Ball-Pivoting Algorithm.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akmonengine/ballpivot"
	"github.com/akmonengine/ballpivot/ply"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		input  string
		output string
		radius float64
	)

	cmd := &cobra.Command{
		Use:   "ballpivot -i cloud.ply -o mesh.ply [-r radius]",
		Short: "Reconstruct a triangle mesh from an oriented point cloud",
		Long: `Reconstruct a triangle mesh from an oriented point cloud.

The input is an ASCII PLY file whose vertex element carries x, y, z, nx, ny
and nz properties. The pivoting ball radius is given with --radius or, when
the flag is omitted, read from standard input. The reconstructed mesh is
written as an ASCII PLY file with indexed faces.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := ply.ReadFile(input)
			if err != nil {
				return err
			}

			if radius <= 0 {
				fmt.Fprint(cmd.OutOrStdout(), "input radius: ")
				if _, err := fmt.Fscan(cmd.InOrStdin(), &radius); err != nil {
					return fmt.Errorf("reading radius: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "radius is %g\n", radius)

			start := time.Now()
			triangles, err := ballpivot.Reconstruct(points, radius)
			if err != nil {
				if !errors.Is(err, ballpivot.ErrNoSeed) {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "no seed triangle found, perhaps the radius is too small")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reconstructed %d triangles in %s\n",
				len(triangles), time.Since(start).Round(time.Millisecond))

			return ply.WriteFile(output, points, triangles)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input PLY point cloud")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PLY mesh")
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0, "pivoting ball radius (prompted for when omitted)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}
