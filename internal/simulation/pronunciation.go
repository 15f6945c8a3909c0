package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"afriqar/internal/content"
)

// ErrUnknownWord is returned when a dialect, lesson or word index does not exist.
var ErrUnknownWord = errors.New("simulation: unknown word")

// DialectFinder looks up a dialect record by id.
type DialectFinder interface {
	Find(ctx context.Context, id string) (any, error)
}

// WordKey identifies a word as dialectID-lessonID-index.
func WordKey(dialectID, lessonID string, index int) string {
	return dialectID + "-" + lessonID + "-" + strconv.Itoa(index)
}

// Playback is the result of one simulated audio clip.
type Playback struct {
	Key   string `json:"key"`
	Word  string `json:"word"`
	Audio string `json:"audio,omitempty"`
}

// LessonProgress counts completed words of one lesson.
type LessonProgress struct {
	Dialect   string `json:"dialect"`
	Lesson    string `json:"lesson"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

// Pronunciation is a dialect practice session: one audio player and the set
// of words whose clip has played to the end.
type Pronunciation struct {
	audio    *Machine[Playback]
	dialects DialectFinder

	mu          sync.Mutex
	completed   map[string]struct{}
	lastDialect string
	lastLesson  string
}

// PronunciationView is the client-facing state.
type PronunciationView struct {
	Playing   Snapshot[Playback] `json:"playing"`
	Completed []string           `json:"completed"`
	Progress  *LessonProgress    `json:"progress,omitempty"`
}

func NewPronunciation(opts Options, dialects DialectFinder) *Pronunciation {
	if opts.Name == "" {
		opts.Name = "pronunciation"
	}
	p := &Pronunciation{dialects: dialects, completed: make(map[string]struct{})}
	p.audio = NewMachine[Playback](opts, func(pb Playback) {
		p.mu.Lock()
		p.completed[pb.Key] = struct{}{}
		p.mu.Unlock()
	})
	return p
}

// Play starts the clip for a word; the word is marked completed when it ends.
func (p *Pronunciation) Play(ctx context.Context, dialectID, lessonID string, index int) error {
	dialect, lesson, err := p.lesson(ctx, dialectID, lessonID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(lesson.Words) {
		return fmt.Errorf("%w: %s", ErrUnknownWord, WordKey(dialectID, lessonID, index))
	}
	word := lesson.Words[index]
	pb := Playback{
		Key:   WordKey(dialect.ID, lesson.ID, index),
		Word:  word.Native(dialect.Name),
		Audio: word.Audio(),
	}
	if err := p.audio.Start(func() Playback { return pb }); err != nil {
		return err
	}
	p.mu.Lock()
	p.lastDialect, p.lastLesson = dialect.ID, lesson.ID
	p.mu.Unlock()
	return nil
}

// Progress reports the completed share of a lesson.
func (p *Pronunciation) Progress(ctx context.Context, dialectID, lessonID string) (LessonProgress, error) {
	_, lesson, err := p.lesson(ctx, dialectID, lessonID)
	if err != nil {
		return LessonProgress{}, err
	}
	prefix := dialectID + "-" + lessonID + "-"
	p.mu.Lock()
	done := 0
	for key := range p.completed {
		if strings.HasPrefix(key, prefix) {
			done++
		}
	}
	p.mu.Unlock()
	out := LessonProgress{Dialect: dialectID, Lesson: lessonID, Completed: done, Total: len(lesson.Words)}
	if out.Total > 0 {
		out.Percent = done * 100 / out.Total
	}
	return out, nil
}

// Completed reports whether the word's clip has played to the end.
func (p *Pronunciation) Completed(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.completed[key]
	return ok
}

// Audio exposes the playback machine.
func (p *Pronunciation) Audio() *Machine[Playback] { return p.audio }

// View reports playback, completed words and the progress of the lesson
// practised last.
func (p *Pronunciation) View(ctx context.Context) (PronunciationView, error) {
	view := PronunciationView{Playing: p.audio.Snapshot()}
	p.mu.Lock()
	view.Completed = make([]string, 0, len(p.completed))
	for key := range p.completed {
		view.Completed = append(view.Completed, key)
	}
	dialectID, lessonID := p.lastDialect, p.lastLesson
	p.mu.Unlock()
	sort.Strings(view.Completed)
	if dialectID == "" {
		return view, nil
	}
	progress, err := p.Progress(ctx, dialectID, lessonID)
	if err != nil {
		return view, err
	}
	view.Progress = &progress
	return view, nil
}

func (p *Pronunciation) Close() { p.audio.Close() }

func (p *Pronunciation) lesson(ctx context.Context, dialectID, lessonID string) (content.Dialect, content.Lesson, error) {
	item, err := p.dialects.Find(ctx, dialectID)
	if err != nil {
		return content.Dialect{}, content.Lesson{}, err
	}
	dialect, ok := item.(content.Dialect)
	if !ok {
		return content.Dialect{}, content.Lesson{}, fmt.Errorf("%w: %s is not a dialect", ErrUnknownWord, dialectID)
	}
	lesson, ok := dialect.Lesson(lessonID)
	if !ok {
		return content.Dialect{}, content.Lesson{}, fmt.Errorf("%w: lesson %s/%s", ErrUnknownWord, dialectID, lessonID)
	}
	return dialect, lesson, nil
}
