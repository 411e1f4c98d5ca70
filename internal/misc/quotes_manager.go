package misc

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strings"

	log "github.com/sirupsen/logrus"
)

//go:embed quotes.csv
var defaultQuotesCsv string

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

type QuotesManager struct {
	Quotes       []*Quote
	GenresQuotes map[string][]*Quote
}

// NewDefaultQuotesManager loads the motivational quotes shipped with the service.
func NewDefaultQuotesManager() (*QuotesManager, error) {
	return NewQuoteManager(csv.NewReader(strings.NewReader(defaultQuotesCsv)))
}

func NewQuoteManager(quotesCsvReader *csv.Reader) (*QuotesManager, error) {
	qm := &QuotesManager{
		GenresQuotes: make(map[string][]*Quote),
	}

	quotesCsvReader.Comma = ';'
	for {
		record, err := quotesCsvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) != 3 {
			return nil, fmt.Errorf("record [%s] does not have 3 elements", record)
		}

		// QUOTE;AUTHOR;GENRE
		quote := &Quote{
			Text:   record[0],
			Author: record[1],
			Genre:  record[2],
		}
		qm.Quotes = append(qm.Quotes, quote)
		qm.GenresQuotes[quote.Genre] = append(qm.GenresQuotes[quote.Genre], quote)
	}

	if len(qm.Quotes) == 0 {
		return nil, fmt.Errorf("no quotes found")
	}

	log.Debugf("quotes CSV read %d quotes", len(qm.Quotes))

	return qm, nil
}

// RandomQuote picks from the given genre, or from all quotes when the genre
// is empty or unknown.
func (qm *QuotesManager) RandomQuote(genre string) *Quote {
	quotes := qm.GenresQuotes[genre]
	if len(quotes) == 0 {
		quotes = qm.Quotes
	}
	return quotes[rand.Intn(len(quotes))]
}
