// Package excel writes the crawled QA corpus to an XLSX workbook, one row
// per question/answer pair.
package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

const sheetName = "QA Corpus"

type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(articles []domain.Article, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := []any{"Article ID", "Title", "URL", "Source", "Category", "Status", "Crawled At", "Question", "Answer"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, article := range articles {
		for _, pair := range article.QAPairs {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return fmt.Errorf("resolve cell: %w", err)
			}
			values := []any{
				article.ID,
				article.Title,
				article.URL,
				article.Source,
				article.Category,
				string(article.Status),
				article.CrawledAt.Format(time.RFC3339),
				pair.Question,
				joinAnswers(pair.Answers),
			}
			if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func joinAnswers(answers []domain.AnswerBlock) string {
	parts := make([]string, 0, len(answers))
	for _, a := range answers {
		if a.Text != "" {
			parts = append(parts, a.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
