package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcoPoloResearchLab/notebot/internal/users"
)

const (
	exportHeaderRule = "=============================="
	exportEntryRule  = "--------------------"
	exportTimeLayout = "2006-01-02 15:04:05"
)

// ExportNotes renders every note of the user as a plain-text document, oldest first.
// An empty displayName falls back to user_<id>.
func (s *Service) ExportNotes(ctx context.Context, userID users.ID, displayName string) (string, error) {
	notes, err := s.ListAllNotes(ctx, userID)
	if err != nil {
		return "", err
	}
	return RenderExport(userID, displayName, notes), nil
}

// RenderExport formats notes into the export document.
func RenderExport(userID users.ID, displayName string, notes []Note) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "user_" + userID.String()
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Notes export for @%s\n", name)
	builder.WriteString(exportHeaderRule + "\n\n")
	for _, note := range notes {
		fmt.Fprintf(&builder, "ID: %d\n", note.ID)
		fmt.Fprintf(&builder, "Created: %s\n", note.CreatedAt().Format(exportTimeLayout))
		fmt.Fprintf(&builder, "Text: %s\n", note.Text)
		builder.WriteString(exportEntryRule + "\n\n")
	}
	return builder.String()
}
