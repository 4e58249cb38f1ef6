package database

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// DefaultBlockedWordsURL is the word list used when BLOCKED_WORDS_URL is unset
const DefaultBlockedWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// SeedBlockedWords downloads the blocked words list into the blocked_words
// table unless it is already populated
func (db *DB) SeedBlockedWords(ctx context.Context, url string) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blocked_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check blocked words count: %w", err)
	}
	if count > 0 {
		log.Printf("Blocked words filter already populated with %d words", count)
		return nil
	}

	log.Println("Downloading blocked words list...")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build blocked words request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download blocked words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from blocked words URL: %d", resp.StatusCode)
	}

	insert := db.Dialect.Upsert("blocked_words", []string{"word"}, []string{"word"}, nil)
	added := 0
	err = db.WithTx(ctx, func(tx *Tx) error {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			word := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if word == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, insert, word); err != nil {
				return fmt.Errorf("failed to insert blocked word: %w", err)
			}
			added++
		}
		return scanner.Err()
	})
	if err != nil {
		return err
	}

	log.Printf("Blocked words filter populated with %d words", added)
	return nil
}

// BlockedWordsIn returns the words of text that are on the blocked list
func (db *DB) BlockedWordsIn(ctx context.Context, text string) ([]string, error) {
	var found []string
	for _, word := range splitWords(text) {
		var count int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blocked_words WHERE word = ?", word).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to check blocked word: %w", err)
		}
		if count > 0 {
			log.Printf("Blocked word detected: '%s'", word)
			found = append(found, word)
		}
	}
	return found, nil
}

// splitWords lowercases text and splits it on anything that is not a letter,
// digit or apostrophe. Duplicates are dropped.
func splitWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	seen := make(map[string]bool, len(fields))
	words := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			words = append(words, f)
		}
	}
	return words
}
