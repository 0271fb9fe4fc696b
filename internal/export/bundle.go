package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"macropipe/domain/indicator"
	"macropipe/internal/config"
	"macropipe/internal/errors"
)

// BundleInfo carries the dataset figures rendered into the bundle README
type BundleInfo struct {
	CountryName    string
	RecordCount    int
	IndicatorCount int
	MinYear        int
	MaxYear        int
}

// CreateBundle assembles the shareable export package: renamed copies of
// the long and wide artifacts, a generated README, an HTML report, a
// wide-format Excel workbook, all compressed into a zip archive. Returns
// the archive path.
func CreateBundle(paths config.PathConfig, d *indicator.Dataset, info BundleInfo, timestamp string, logger *logrus.Logger) (string, error) {
	bundleDir := filepath.Join(paths.ExportDir, "macropipe_export_"+timestamp)
	if err := os.MkdirAll(bundleDir, 0o755); err != nil {
		return "", errors.ExportError("failed to create export directory", err)
	}

	exports := map[string]string{
		paths.LongPath(): "economic_data.csv",
		paths.WidePath(): "economic_data_wide.csv",
	}
	for src, name := range exports {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			return "", errors.MissingInput(src)
		}
		if err := copyFile(src, filepath.Join(bundleDir, name)); err != nil {
			return "", errors.ExportError("failed to export "+name, err)
		}
	}

	readme := renderReadme(info)
	if err := os.WriteFile(filepath.Join(bundleDir, "README.md"), []byte(readme), 0o644); err != nil {
		return "", errors.ExportError("failed to write README", err)
	}

	html := markdown.ToHTML([]byte(readme), nil, nil)
	if err := os.WriteFile(filepath.Join(bundleDir, "report.html"), html, 0o644); err != nil {
		return "", errors.ExportError("failed to write HTML report", err)
	}

	if err := writeWorkbook(filepath.Join(bundleDir, "indicators.xlsx"), d); err != nil {
		return "", err
	}

	zipPath := bundleDir + ".zip"
	if err := zipDirectory(bundleDir, zipPath); err != nil {
		return "", errors.ExportError("failed to create archive", err)
	}

	logger.WithFields(logrus.Fields{
		"bundle":  bundleDir,
		"archive": zipPath,
	}).Info("Export package created")

	return zipPath, nil
}

// renderReadme generates the human-readable report included in the bundle
func renderReadme(info BundleInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Economic Indicators - Export Package\n\n", info.CountryName)
	fmt.Fprintf(&b, "- **Export Date**: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- **Data Coverage**: %d-%d\n", info.MinYear, info.MaxYear)
	fmt.Fprintf(&b, "- **Indicators**: %d\n", info.IndicatorCount)
	fmt.Fprintf(&b, "- **Records**: %d\n\n", info.RecordCount)

	b.WriteString("## Files Included\n\n")
	b.WriteString("### economic_data.csv\n")
	b.WriteString("Long format (one row per observation). Columns: country_name, country_code, indicator_code, indicator_name, year, value.\n\n")
	b.WriteString("### economic_data_wide.csv\n")
	b.WriteString("Wide format pivot: one row per year, one column per indicator. Missing combinations are empty cells.\n\n")
	b.WriteString("### indicators.xlsx\n")
	b.WriteString("Wide-format workbook for spreadsheet analysis.\n\n")

	b.WriteString("## Calculated Metrics Included\n\n")
	b.WriteString("- Year-over-year growth rates for key indicators\n")
	b.WriteString("- Economic diversification index\n")
	b.WriteString("- Linear trend coefficients\n")

	return b.String()
}

// writeWorkbook renders the wide-format pivot into an Excel sheet
func writeWorkbook(path string, d *indicator.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	names := d.IndicatorNames()
	sort.Strings(names)

	if err := f.SetCellValue(sheet, "A1", "year"); err != nil {
		return errors.ExportError("failed to write workbook header", err)
	}
	for i, name := range names {
		cellRef, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return errors.ExportError("failed to compute workbook cell", err)
		}
		if err := f.SetCellValue(sheet, cellRef, name); err != nil {
			return errors.ExportError("failed to write workbook header", err)
		}
	}

	cells := make(map[indicator.Key]float64, d.Len())
	for _, o := range d.Observations {
		cells[o.Key()] = o.Value
	}

	for row, year := range d.Years() {
		cellRef, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return errors.ExportError("failed to compute workbook cell", err)
		}
		if err := f.SetCellValue(sheet, cellRef, year); err != nil {
			return errors.ExportError("failed to write workbook row", err)
		}

		for col, name := range names {
			v, ok := cells[indicator.Key{IndicatorName: name, Year: year}]
			if !ok {
				continue
			}
			cellRef, err := excelize.CoordinatesToCellName(col+2, row+2)
			if err != nil {
				return errors.ExportError("failed to compute workbook cell", err)
			}
			if err := f.SetCellValue(sheet, cellRef, v); err != nil {
				return errors.ExportError("failed to write workbook cell", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.ExportError("failed to save workbook", err)
	}
	return nil
}

// zipDirectory compresses a directory into a flat zip archive
func zipDirectory(dir, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	return filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(w, in)
		return err
	})
}
