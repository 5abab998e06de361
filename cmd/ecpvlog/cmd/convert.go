package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opentrellis/ecpvlog/pkg/connect"
	"github.com/opentrellis/ecpvlog/pkg/lpf"
	"github.com/opentrellis/ecpvlog/pkg/rgraph"
	"github.com/opentrellis/ecpvlog/pkg/trellis"
	"github.com/opentrellis/ecpvlog/pkg/verilog"
)

func runConvert(cmd *cobra.Command, args []string) error {
	if lpfFile != "" && packageName == "" {
		return fmt.Errorf("cannot use an LPF file without specifying the chip package")
	}

	log := newLogger()

	log.Info("Loading chip dump...")
	chip, err := trellis.LoadChipDump(args[0])
	if err != nil {
		return err
	}

	renames, err := buildRenames(chip, log)
	if err != nil {
		return err
	}

	log.Info("Computing connection graph...")
	reg := rgraph.NewRegistry()
	builder := connect.NewBuilder(chip, reg, log)
	graph := builder.Expand(builder.BuildConfigGraph())

	log.Info("Generating Verilog...")
	emitter := &verilog.Emitter{
		Chip:    chip,
		Renames: renames,
		Log:     log,
		Out:     os.Stdout,
	}
	if err := emitter.Emit(graph, moduleName); err != nil {
		return err
	}

	log.Info("Done")
	return nil
}

// buildRenames maps PIO and IOLOGIC instance names to their package pin
// names (or LPF component names) so the emitted ports read like the
// original design instead of grid coordinates.
func buildRenames(chip *trellis.Chip, log *logrus.Logger) (verilog.RenameTable, error) {
	renames := make(verilog.RenameTable)
	if packageName == "" {
		return renames, nil
	}

	pins, ok := chip.Packages[packageName]
	if !ok {
		return nil, fmt.Errorf("package %s not found in chip dump", packageName)
	}

	lpfMap := map[string]string{}
	if lpfFile != "" {
		var err error
		lpfMap, err = lpf.ParseFile(lpfFile, log)
		if err != nil {
			return nil, err
		}
	}

	for pinName, pd := range pins {
		name := pinName
		if comp, ok := lpfMap[pinName]; ok {
			// Escape the LPF name in case it has funny characters.
			name = "\\" + comp
		}
		// PIO and IOLOGIC do not share pin names except for IOLDO/IOLTO,
		// so both can safely take the package pin's name.
		renames[fmt.Sprintf("R%dC%d_PIO%s", pd.Row, pd.Col, pd.Pio)] = name
		renames[fmt.Sprintf("R%dC%d_IOLOGIC%s", pd.Row, pd.Col, pd.Pio)] = name
	}
	return renames, nil
}
