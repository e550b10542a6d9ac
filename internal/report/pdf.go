package report

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

var (
	tableHeaders = []string{"Date", "Time", "Duration", "Tags", "Description"}
	tableGrid    = []uint{2, 2, 2, 2, 4}
	stripe       = color.Color{Red: 240, Green: 240, Blue: 240}
)

// WritePDF renders r as an A4 document at path.
func WritePDF(path string, r Report) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Time Report", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		if !r.Empty() {
			m.Row(10, func() {
				m.Col(12, func() {
					m.Text(fmt.Sprintf("%s - %s", r.From.Format("2006-01-02"), r.To.Format("2006-01-02")), props.Text{
						Top:   3,
						Align: consts.Center,
						Size:  12,
					})
				})
			})
		}
	})

	for _, g := range r.Groups {
		if g.Title != "" {
			heading := g.Title
			m.Row(10, func() {
				m.Col(12, func() {
					m.Text(heading, props.Text{
						Top:   5,
						Style: consts.Bold,
						Size:  12,
						Align: consts.Left,
					})
				})
			})
		}

		m.TableList(tableHeaders, pdfRows(g.Rows), tableProps())

		if r.GroupBy != GroupByNone {
			subtotal := g.Subtotal
			m.Row(10, func() {
				m.Col(12, func() {
					m.Text("Subtotal: "+FormatDuration(subtotal), props.Text{
						Style: consts.Bold,
						Align: consts.Right,
						Size:  10,
					})
				})
			})
		}
		m.Row(5, func() {})
	}

	if len(r.Tags) > 0 {
		rows := make([][]string, len(r.Tags))
		for i, tt := range r.Tags {
			rows[i] = []string{tt.Name, fmt.Sprint(tt.Slices), FormatDuration(tt.Total)}
		}
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("By tag", props.Text{Top: 5, Style: consts.Bold, Size: 12})
			})
		})
		m.TableList([]string{"Tag", "Slices", "Total"}, rows, props.TableList{
			HeaderProp:           props.TableListContent{Size: 10, GridSizes: []uint{6, 3, 3}},
			ContentProp:          props.TableListContent{Size: 10, GridSizes: []uint{6, 3, 3}},
			Align:                consts.Center,
			AlternatedBackground: &stripe,
			HeaderContentSpace:   1,
		})
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Total: %d days, %s", r.Days, FormatDuration(r.Total)), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	if err := m.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf report %s: %w", path, err)
	}
	return nil
}

func pdfRows(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = []string{
			row.Start.Format("2006-01-02"),
			fmt.Sprintf("%s-%s", row.Start.Format("15:04"), row.End.Format("15:04")),
			FormatDuration(row.Duration),
			strings.Join(row.Tags, " "),
			row.Description,
		}
	}
	return out
}

func tableProps() props.TableList {
	return props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: tableGrid,
		},
		ContentProp: props.TableListContent{
			Size:      10,
			GridSizes: tableGrid,
		},
		Align:                consts.Center,
		AlternatedBackground: &stripe,
		HeaderContentSpace:   1,
		Line:                 false,
	}
}
