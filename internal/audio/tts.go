package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTTSURL     = "https://translate.google.com/translate_tts"
	ttsRequestTimeout = 10 * time.Second
)

// TTSService generates pronunciation audio for card terms
type TTSService struct {
	audioDir string
	baseURL  string
	lang     string
	client   *http.Client
}

// NewTTSService creates a TTS service writing MP3 files to audioDir.
// Terms are pronounced in English.
func NewTTSService(audioDir string) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		baseURL:  defaultTTSURL,
		lang:     "en",
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// AudioDir returns the directory audio files are written to
func (s *TTSService) AudioDir() string {
	return s.audioDir
}

// Filename returns the audio filename used for term
func Filename(term string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(term)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "term"
	}
	return "term_" + name + ".mp3"
}

// GenerateAudioFile converts term to speech and saves it as MP3.
// Returns the filename (not full path); an existing file is reused.
func (s *TTSService) GenerateAudioFile(ctx context.Context, term string) (string, error) {
	filename := Filename(term)
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	if err := s.fetch(ctx, term, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return filename, nil
}

// Exists reports whether filename is present in the audio directory
func (s *TTSService) Exists(filename string) bool {
	if filename == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.audioDir, filepath.Base(filename)))
	return err == nil
}

func (s *TTSService) fetch(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.lang)
	params.Set("client", "tw-ob")
	params.Set("textlen", strconv.Itoa(len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Write to a temp file first so a failed download never leaves a
	// truncated MP3 that later looks valid.
	tmp, err := os.CreateTemp(s.audioDir, ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), outputPath)
}

// DeleteAudioFile removes an audio file
func (s *TTSService) DeleteAudioFile(filename string) error {
	err := os.Remove(filepath.Join(s.audioDir, filepath.Base(filename)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetAllAudioFiles returns a list of all MP3 files in the audio directory
func (s *TTSService) GetAllAudioFiles() ([]string, error) {
	files, err := os.ReadDir(s.audioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	var audioFiles []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".mp3" {
			audioFiles = append(audioFiles, file.Name())
		}
	}

	return audioFiles, nil
}

// RemoveOrphans deletes MP3 files not present in keep and returns how many were removed
func (s *TTSService) RemoveOrphans(keep map[string]bool) (int, error) {
	files, err := s.GetAllAudioFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range files {
		if keep[name] {
			continue
		}
		if err := s.DeleteAudioFile(name); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}
