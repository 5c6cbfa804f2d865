package telemetry

import (
	"bytes"
	"strconv"
	"time"

	"github.com/markusressel/motor2go/cmd/global"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists all stored runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPersistence()
		if err != nil {
			return err
		}
		runs, err := p.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			ui.Info("No runs stored")
			return nil
		}

		var rows [][]string
		for _, run := range runs {
			rows = append(rows, []string{
				run.Id,
				run.Started.Local().Format(time.DateTime),
				run.Updated.Sub(run.Started).Round(time.Millisecond).String(),
				strconv.Itoa(run.Records),
			})
		}

		tab := table.Table{
			Headers: []string{"Run", "Started", "Duration", "Records"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		err = tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if err != nil {
			return err
		}
		ui.Printfln(buf.String())
		return nil
	},
}

func init() {
	Command.AddCommand(listCmd)
}
