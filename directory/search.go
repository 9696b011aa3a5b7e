package directory

import (
	"chat-inbox/domain"
	"context"
	"fmt"
	"strings"

	"github.com/blugelabs/bluge"
)

const (
	fieldName  = "name"
	fieldEmail = "email"
	fieldID    = "_id"
)

// index keeps lower-cased display names and emails as single keyword terms so
// that a wildcard query behaves like a substring match.
type index struct {
	writer *bluge.Writer
}

func newIndex() (*index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	return &index{writer: writer}, nil
}

func (i *index) put(user domain.User) error {
	doc := bluge.NewDocument(user.ID).
		AddField(bluge.NewKeywordField(fieldName, strings.ToLower(user.DisplayName))).
		AddField(bluge.NewKeywordField(fieldEmail, strings.ToLower(user.Email)))
	return i.writer.Update(doc.ID(), doc)
}

// search returns the ids of users whose name or email contains query.
func (i *index) search(ctx context.Context, query string, limit int) (map[string]struct{}, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var q bluge.Query
	term := strings.Map(func(r rune) rune {
		if r == '*' || r == '?' {
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(query)))
	if term == "" {
		q = bluge.NewMatchAllQuery()
	} else {
		pattern := "*" + term + "*"
		q = bluge.NewBooleanQuery().
			AddShould(bluge.NewWildcardQuery(pattern).SetField(fieldName)).
			AddShould(bluge.NewWildcardQuery(pattern).SetField(fieldEmail)).
			SetMinShould(1)
	}

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{})
	match, err := iterator.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				ids[string(value)] = struct{}{}
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = iterator.Next()
	}
	return ids, err
}

func (i *index) close() error {
	return i.writer.Close()
}
