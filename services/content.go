package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/engine"
	"github.com/ze-parceiro/simulator_api/shared"
)

// ContentService owns the checkpoint catalogue and decides whether an answer is correct.
type ContentService struct {
	context.DefaultService

	catalogue []engine.CheckpointDefinition
	file      string
}

const CONTENT_SVC = "content_svc"

var ErrUnknownCheckpoint = errors.New("unknown checkpoint")

func NewContentService(catalogue []engine.CheckpointDefinition) *ContentService {
	return &ContentService{catalogue: catalogue}
}

func (svc ContentService) Id() string {
	return CONTENT_SVC
}

func (svc *ContentService) Configure(ctx *context.Context) error {
	svc.file = os.Getenv("CHECKPOINTS_FILE")
	return svc.DefaultService.Configure(ctx)
}

func (svc *ContentService) Start() error {
	if svc.file == "" {
		svc.catalogue = engine.DefaultCatalogue()
		return nil
	}

	catalogue, err := LoadCatalogue(svc.file)
	if err != nil {
		return err
	}
	svc.catalogue = catalogue
	log.Printf("Loaded %d checkpoints from %s", len(catalogue), svc.file)
	return nil
}

// LoadCatalogue reads a JSON array of checkpoint definitions.
func LoadCatalogue(path string) ([]engine.CheckpointDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints file: %w", err)
	}

	var catalogue []engine.CheckpointDefinition
	if err := shared.JSONAPI.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoints file: %w", err)
	}
	if err := ValidateCatalogue(catalogue); err != nil {
		return nil, err
	}
	return catalogue, nil
}

// ValidateCatalogue checks ids are unique and each question can be answered.
func ValidateCatalogue(catalogue []engine.CheckpointDefinition) error {
	if len(catalogue) == 0 {
		return errors.New("checkpoint catalogue is empty")
	}
	seen := make(map[int]bool, len(catalogue))
	for _, def := range catalogue {
		if seen[def.ID] {
			return fmt.Errorf("duplicate checkpoint id %d", def.ID)
		}
		seen[def.ID] = true

		switch def.Type {
		case engine.QuestionMultiple:
			if def.CorrectOption < 0 || def.CorrectOption >= len(def.Options) {
				return fmt.Errorf("checkpoint %d: correct option %d out of range", def.ID, def.CorrectOption)
			}
		case engine.QuestionText:
			if strings.TrimSpace(def.CorrectText) == "" {
				return fmt.Errorf("checkpoint %d: missing correct text", def.ID)
			}
		default:
			return fmt.Errorf("checkpoint %d: unknown question type %q", def.ID, def.Type)
		}
	}
	return nil
}

func (svc *ContentService) Catalogue() []engine.CheckpointDefinition {
	return svc.catalogue
}

func (svc *ContentService) Definition(id int) (engine.CheckpointDefinition, bool) {
	for _, def := range svc.catalogue {
		if def.ID == id {
			return def, true
		}
	}
	return engine.CheckpointDefinition{}, false
}

// Questions returns the catalogue without answers or hints.
func (svc *ContentService) Questions() []dto.CheckpointQuestion {
	questions := make([]dto.CheckpointQuestion, 0, len(svc.catalogue))
	for _, def := range svc.catalogue {
		questions = append(questions, dto.NewCheckpointQuestion(def))
	}
	return questions
}

// EvaluateAnswer compares a submitted answer with the checkpoint definition.
// Multiple choice compares the option index; text answers compare trimmed and
// case-insensitively.
func (svc *ContentService) EvaluateAnswer(checkpointID int, option *int, text string) (bool, error) {
	def, ok := svc.Definition(checkpointID)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownCheckpoint, checkpointID)
	}

	switch def.Type {
	case engine.QuestionMultiple:
		if option == nil {
			return false, errors.New("option is required for multiple choice questions")
		}
		return *option == def.CorrectOption, nil
	case engine.QuestionText:
		if strings.TrimSpace(text) == "" {
			return false, errors.New("text is required for open questions")
		}
		return strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(def.CorrectText)), nil
	}

	return false, nil
}
