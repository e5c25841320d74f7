package httpserver

import "github.com/robalobadob/wordscape/apps/go-server/internal/game"

// Wire shapes of a session snapshot. Durations are milliseconds.

type animationDTO struct {
	DurationMs int64 `json:"durationMs"`
	DelayMs    int64 `json:"delayMs"`
}

type wordDTO struct {
	Index     int          `json:"index"`
	Text      string       `json:"text"`
	Color     string       `json:"color"`
	Caught    bool         `json:"caught"`
	Position  string       `json:"position"`
	Animation animationDTO `json:"animation"`
}

type speechDTO struct {
	SpokenWords []string `json:"spokenWords"`
	Error       string   `json:"error,omitempty"`
}

type snapshotDTO struct {
	GameID          string    `json:"gameId"`
	Status          string    `json:"status"`
	CaughtScore     int       `json:"caughtScore"`
	LostScore       int       `json:"lostScore"`
	Words           []wordDTO `json:"words"`
	Caught          []int     `json:"caught"`
	VoicePermission bool      `json:"voicePermission"`
	Speech          speechDTO `json:"speech"`
}

// transitionDTO is returned by the word transition endpoints.
type transitionDTO struct {
	Changed bool `json:"changed"`
	snapshotDTO
}

func toSnapshotDTO(s game.Snapshot) snapshotDTO {
	words := make([]wordDTO, len(s.Words.Moving))
	for i, w := range s.Words.Moving {
		words[i] = wordDTO{
			Index:    i,
			Text:     w.Text,
			Color:    w.Color,
			Caught:   w.Caught,
			Position: string(w.Position),
			Animation: animationDTO{
				DurationMs: w.Animation.Duration.Milliseconds(),
				DelayMs:    w.Animation.Delay.Milliseconds(),
			},
		}
	}
	spoken := s.Speech.SpokenWords
	if spoken == nil {
		spoken = []string{}
	}
	return snapshotDTO{
		GameID:          s.ID,
		Status:          string(s.Game.Status),
		CaughtScore:     s.Game.CaughtScore,
		LostScore:       s.Game.LostScore,
		Words:           words,
		Caught:          s.Words.CaughtIndexes(),
		VoicePermission: s.VoicePermission,
		Speech:          speechDTO{SpokenWords: spoken, Error: s.Speech.Error},
	}
}
