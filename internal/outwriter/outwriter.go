// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
)

// RatingView is one scored artifact in the line-oriented rating format.
type RatingView struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	schema.ScoreReport
}

// ArtifactView is an artifact record with its score band added.
type ArtifactView struct {
	Label string `json:"label"`
	schema.ArtifactRecord
}

// NewArtifactView adds the score band of the net score to a record.
func NewArtifactView(r schema.ArtifactRecord) ArtifactView {
	return ArtifactView{Label: contract.GetPlainLabel(r.Scores.NetScore.Float64()), ArtifactRecord: r}
}

// NewRatingView flattens a record into its rating line.
func NewRatingView(r schema.ArtifactRecord) RatingView {
	return RatingView{Name: r.Name, Category: r.KindLabel(), ScoreReport: r.Scores}
}
