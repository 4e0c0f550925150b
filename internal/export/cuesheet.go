/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders printable views of setlists.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"helixapi/internal/container"
	"helixapi/internal/helix"
	"helixapi/internal/version"
)

// PresetsPerBank is the number of presets the device groups under one bank.
const PresetsPerBank = 4

// CueSheetOptions controls cue sheet rendering. Units are points.
type CueSheetOptions struct {
	// Title defaults to the setlist name.
	Title string
	// IncludeEmpty lists preset slots that were never initialized.
	IncludeEmpty bool
	// Snapshots adds a line with the snapshot names under each preset.
	Snapshots bool
}

// BankLabel returns the bank and slot of preset i as shown on the device:
// 0 is "01A", 5 is "02B".
func BankLabel(i int) string {
	return fmt.Sprintf("%02d%c", i/PresetsPerBank+1, 'A'+rune(i%PresetsPerBank))
}

type cueRow struct {
	bank, name, song string
	tempo            float64
	snapshots        []string
}

// WriteCueSheet renders the cue sheet of s and writes it to path.
func WriteCueSheet(s *helix.Setlist, path string, opt CueSheetOptions) error {
	var buf bytes.Buffer
	if err := RenderCueSheet(&buf, s, opt); err != nil {
		return err
	}
	if err := container.WriteBytes(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write cue sheet: %w", err)
	}
	return nil
}

// RenderCueSheet writes a one-table PDF listing the presets of s by bank.
func RenderCueSheet(w io.Writer, s *helix.Setlist, opt CueSheetOptions) error {
	if s == nil {
		return fmt.Errorf("setlist is nil")
	}
	title := opt.Title
	if strings.TrimSpace(title) == "" {
		name, err := s.Name()
		if err != nil {
			return err
		}
		title = name
	}
	rows, err := cueRows(s, opt)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("helixapi "+version.String(), true)
	pdf.SetMargins(36, 36, 36)
	pdf.SetAutoPageBreak(true, 36)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 24, tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(220, 220, 220)
		for i, h := range []string{"Bank", "Preset", "Song", "BPM"} {
			pdf.CellFormat(columns[i], 16, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetHeaderFunc(header)
	pdf.AddPage()

	for _, r := range rows {
		pdf.SetFont("Helvetica", "", 10)
		tempo := ""
		if r.tempo > 0 {
			tempo = fmt.Sprintf("%.0f", r.tempo)
		}
		for i, cell := range []string{r.bank, r.name, r.song, tempo} {
			pdf.CellFormat(columns[i], 16, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		if len(r.snapshots) > 0 {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(columns[0], 12, "", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 12, tr(strings.Join(r.snapshots, " | ")), "", "L", false)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// columns are the table widths; they add up to A4 width minus margins.
var columns = [4]float64{50, 200, 213, 60}

func cueRows(s *helix.Setlist, opt CueSheetOptions) ([]cueRow, error) {
	var rows []cueRow
	for i, p := range s.Presets().All() {
		if !p.Initialized() {
			if opt.IncludeEmpty {
				rows = append(rows, cueRow{bank: BankLabel(i), name: "-"})
			}
			continue
		}
		r := cueRow{bank: BankLabel(i)}
		var err error
		if r.name, err = p.Name(); err != nil {
			return nil, err
		}
		if r.song, err = p.Song(); err != nil {
			return nil, err
		}
		if r.tempo, err = p.Tempo(); err != nil {
			return nil, err
		}
		if opt.Snapshots {
			for _, snap := range p.Snapshots().All() {
				name, err := snap.Name()
				if err != nil {
					return nil, err
				}
				r.snapshots = append(r.snapshots, name)
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}
