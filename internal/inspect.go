package internal

import (
	"chat-inbox/repositories"
	"chat-inbox/storage"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"
)

const inspectPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>chat-inbox blobs</title></head>
<body>
<h1>Stored blobs</h1>
<table>
<tr><th>Key</th><th>Type</th><th>Timestamp</th><th>ID</th><th>Detail</th></tr>
{{range .Items}}<tr><td>{{.Key}}</td><td>{{.Type}}</td><td>{{.Timestamp}}</td><td>{{.EntityID}}</td><td>{{.Detail}}</td></tr>
{{end}}</table>
</body>
</html>`

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Detail    string
}

// RowMapper turns one blob into display rows.
type RowMapper func(key string, blob []byte) []InspectRow

type PageData struct {
	Items []InspectRow
}

// Collect maps every key of keys that holds a blob. Missing keys get a single MISSING row.
func Collect(ctx context.Context, store storage.BlobStore, keys []string, mapper RowMapper) ([]InspectRow, error) {
	if mapper == nil {
		mapper = DefaultMapper
	}
	var rows []InspectRow
	for _, key := range keys {
		blob, ok, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if !ok {
			rows = append(rows, InspectRow{Key: key, Type: "MISSING", Timestamp: "--:--:--", EntityID: "-", Detail: "-"})
			continue
		}
		rows = append(rows, mapper(key, blob)...)
	}
	return rows, nil
}

// NewInspectHandler serves the rows of keys as an HTML table.
func NewInspectHandler(store storage.BlobStore, keys []string, mapper RowMapper) http.Handler {
	tmpl := template.Must(template.New("inspect").Parse(inspectPage))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows, err := Collect(r.Context(), store, keys, mapper)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, PageData{Items: rows})
	})
}

func DefaultMapper(key string, blob []byte) []InspectRow {
	return []InspectRow{{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(blob)) + " bytes",
	}}
}

// BlobMapper decodes the inbox blobs into one row per record. Anything it
// cannot decode falls back to DefaultMapper with the error attached.
func BlobMapper(key string, blob []byte) []InspectRow {
	rows, err := decodeRows(key, blob)
	if err != nil {
		row := DefaultMapper(key, blob)[0]
		row.Type = "CORRUPT"
		row.Detail += " (" + err.Error() + ")"
		return []InspectRow{row}
	}
	return rows
}

func decodeRows(key string, blob []byte) ([]InspectRow, error) {
	var rows []InspectRow
	switch key {
	case repositories.ConversationsKey:
		conversations, err := repositories.DecodeConversations(blob)
		if err != nil {
			return nil, err
		}
		for _, c := range conversations {
			detail := fmt.Sprintf("%s, %d unread", c.Group, c.UnreadCount)
			if c.LastMessage != nil {
				detail += ": " + c.LastMessage.Content
			}
			rows = append(rows, InspectRow{Key: key, Type: "CONVERSATION", Timestamp: clock(c.UpdatedAt), EntityID: short(c.ID), Detail: detail})
		}
	case repositories.MessagesKey:
		messages, err := repositories.DecodeMessages(blob)
		if err != nil {
			return nil, err
		}
		for _, m := range messages {
			detail := fmt.Sprintf("%s -> %s [%s]: %s", m.SenderName, m.RecipientName, m.Status, m.Content)
			rows = append(rows, InspectRow{Key: key, Type: "MESSAGE", Timestamp: clock(m.CreatedAt), EntityID: short(m.ID), Detail: detail})
		}
	case repositories.UsersKey:
		users, err := repositories.DecodeUsers(blob)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			rows = append(rows, InspectRow{Key: key, Type: "USER", Timestamp: clock(u.CreatedAt), EntityID: short(u.ID), Detail: u.DisplayName + " <" + u.Email + ">"})
		}
	case repositories.CurrentUserKey:
		u, err := repositories.DecodeUser(blob)
		if err != nil {
			return nil, err
		}
		rows = append(rows, InspectRow{Key: key, Type: "CURRENT_USER", Timestamp: clock(u.CreatedAt), EntityID: short(u.ID), Detail: u.DisplayName + " <" + u.Email + ">"})
	default:
		return DefaultMapper(key, blob), nil
	}
	return rows, nil
}

func clock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}

// short keeps the first 8 characters of an id for readability.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
