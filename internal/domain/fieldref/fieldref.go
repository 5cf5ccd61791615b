// Package fieldref implements the textual grammar for leaderboard data
// source references. The grammar is bit-exact for compatibility with
// persisted configuration:
//
//	"live:" metricName
//	"db:" connectorName ":" fieldBody
//
// where fieldBody is either a bare field name (legacy) or
// "table.column" (current). The body is split off at the first ":"
// after the connector name; any further colons or dots are preserved
// verbatim as part of the field reference.
package fieldref

import "strings"

// Source kind prefixes.
const (
	livePrefix = "live:"
	dbPrefix   = "db:"
)

// Kind discriminates the two supported data source families.
type Kind int

const (
	// KindLive evaluates an in-process metric against active entities.
	KindLive Kind = iota
	// KindDB queries a named relational connector.
	KindDB
)

// Ref addresses one rankable column in one connector. Table is empty
// for legacy flat references.
type Ref struct {
	Connector string
	Table     string
	Column    string
}

// Body returns the connector-local part of the reference.
func (r Ref) Body() string {
	if r.Table == "" {
		return r.Column
	}
	return r.Table + "." + r.Column
}

// String serializes the reference back to its textual form.
// Parse followed by String round-trips the original input.
func (r Ref) String() string {
	return dbPrefix + r.Connector + ":" + r.Body()
}

// Source is a parsed leaderboard data source.
type Source struct {
	Kind   Kind
	Metric string // metric name when Kind == KindLive
	Ref    Ref    // field reference when Kind == KindDB
}

// ParseSource parses a leaderboard dataSource string.
func ParseSource(s string) (Source, error) {
	switch {
	case strings.HasPrefix(s, livePrefix):
		return Source{Kind: KindLive, Metric: s[len(livePrefix):]}, nil
	case strings.HasPrefix(s, dbPrefix):
		ref, err := Parse(s)
		if err != nil {
			return Source{}, err
		}
		return Source{Kind: KindDB, Ref: ref}, nil
	default:
		return Source{}, ErrUnknownSourceKind
	}
}

// Parse parses a "db:" reference. Only the first ":" after the
// connector name is significant; the remainder is the field body.
func Parse(s string) (Ref, error) {
	if !strings.HasPrefix(s, dbPrefix) {
		return Ref{}, ErrNotDatabaseSource
	}
	rest := s[len(dbPrefix):]
	sep := strings.Index(rest, ":")
	if sep <= 0 {
		return Ref{}, ErrMissingConnector
	}
	connector := rest[:sep]
	body := rest[sep+1:]

	table, column, err := SplitBody(body)
	if err != nil {
		// Legacy flat form: the whole body is the field name.
		return Ref{Connector: connector, Column: body}, nil
	}
	return Ref{Connector: connector, Table: table, Column: column}, nil
}

// SplitBody splits a structured "table.column" body. A body without
// the "." separator is rejected with ErrMissingSeparator so callers
// that require the structured form can report it distinctly.
func SplitBody(body string) (table, column string, err error) {
	dot := strings.Index(body, ".")
	if dot <= 0 || dot == len(body)-1 {
		return "", "", ErrMissingSeparator
	}
	return body[:dot], body[dot+1:], nil
}
