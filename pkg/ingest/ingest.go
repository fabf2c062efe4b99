// Package ingest reads the stable's semicolon-delimited tables into a
// models.ScheduleInput.
package ingest

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// Standard file names of an export directory
const (
	FileHorses         = "BD_chevaux.csv"
	FileSkills         = "BD_competences_chevaux.csv"
	FileFriendships    = "BD_amis_long.csv"
	FileActiveCourses  = "BD_cours_manège.csv"
	FilePassiveCourses = "BD_cours_autres.csv"
)

// Column names
const (
	colHorse         = "Nom_Cheval"
	colMaxHours      = "Max_heures_Travail"
	colSkill         = "Competence"
	colQualification = "Qualification"
	colFriend        = "Amis"
	colDay           = "Jour"
	colStart         = "Heure_début"
	colEnd           = "Heure_fin"
	colActiveName    = "Cours_nom"
	colActiveSkill   = "Exigence_1"
	colPassiveName   = "Coursautres_nom"
	colPassiveSkill  = "Exigence"
	colHeadcount     = "Nombre_chevaux"
)

// Sources holds one reader per table
type Sources struct {
	Horses         io.Reader
	Skills         io.Reader
	Friendships    io.Reader
	ActiveCourses  io.Reader
	PassiveCourses io.Reader
}

// Parser converts tables into engine input. Rows it has to drop are logged.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a parser logging through logger
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger.With().Str("component", "ingest").Logger()}
}

// Parse reads every table in src
func (p *Parser) Parse(src Sources) (models.ScheduleInput, error) {
	var in models.ScheduleInput
	var err error
	if in.Horses, err = p.ParseHorses(src.Horses); err != nil {
		return in, err
	}
	if in.Skills, err = p.ParseSkills(src.Skills); err != nil {
		return in, err
	}
	if in.Friendships, err = p.ParseFriendships(src.Friendships); err != nil {
		return in, err
	}
	if in.ActiveCourses, err = p.ParseActiveCourses(src.ActiveCourses); err != nil {
		return in, err
	}
	if in.PassiveCourses, err = p.ParsePassiveCourses(src.PassiveCourses); err != nil {
		return in, err
	}
	return in, nil
}

// LoadDir reads the five standard files from dir concurrently
func (p *Parser) LoadDir(ctx context.Context, dir string) (models.ScheduleInput, error) {
	var in models.ScheduleInput
	g, _ := errgroup.WithContext(ctx)

	load := func(file string, parse func(io.Reader) error) {
		g.Go(func() error {
			f, err := os.Open(filepath.Join(dir, file))
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()
			return parse(f)
		})
	}

	load(FileHorses, func(r io.Reader) (err error) { in.Horses, err = p.ParseHorses(r); return })
	load(FileSkills, func(r io.Reader) (err error) { in.Skills, err = p.ParseSkills(r); return })
	load(FileFriendships, func(r io.Reader) (err error) { in.Friendships, err = p.ParseFriendships(r); return })
	load(FileActiveCourses, func(r io.Reader) (err error) { in.ActiveCourses, err = p.ParseActiveCourses(r); return })
	load(FilePassiveCourses, func(r io.Reader) (err error) { in.PassiveCourses, err = p.ParsePassiveCourses(r); return })

	if err := g.Wait(); err != nil {
		return models.ScheduleInput{}, err
	}
	return in, nil
}

// ParseHorses reads Nom_Cheval and Max_heures_Travail. Unparsable max
// hours read as 0, which keeps the horse out of active courses.
func (p *Parser) ParseHorses(r io.Reader) ([]models.HorseRecord, error) {
	t, err := readTable(FileHorses, r)
	if err != nil {
		return nil, err
	}
	if err := t.require(colHorse, colMaxHours); err != nil {
		return nil, err
	}
	out := make([]models.HorseRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := models.HorseRecord{Name: t.get(row, colHorse)}
		if v, err := parseNumber(t.get(row, colMaxHours)); err == nil {
			rec.MaxHours = v
		} else {
			p.logger.Warn().Str("horse", rec.Name).Msg("max hours not a number, using 0")
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseSkills reads the skill matrix. Oui is Yes, Dépannage is Backup,
// anything else None.
func (p *Parser) ParseSkills(r io.Reader) ([]models.SkillRecord, error) {
	t, err := readTable(FileSkills, r)
	if err != nil {
		return nil, err
	}
	if err := t.require(colHorse, colSkill, colQualification); err != nil {
		return nil, err
	}
	out := make([]models.SkillRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, models.SkillRecord{
			Horse:         t.get(row, colHorse),
			Skill:         t.get(row, colSkill),
			Qualification: models.ParseQualification(t.get(row, colQualification)),
		})
	}
	return out, nil
}

// ParseFriendships reads one directional edge per row; rows with no friend
// are dropped
func (p *Parser) ParseFriendships(r io.Reader) ([]models.FriendshipRecord, error) {
	t, err := readTable(FileFriendships, r)
	if err != nil {
		return nil, err
	}
	if err := t.require(colHorse, colFriend); err != nil {
		return nil, err
	}
	out := make([]models.FriendshipRecord, 0, len(t.rows))
	for _, row := range t.rows {
		friend := t.get(row, colFriend)
		if friend == "" {
			continue
		}
		out = append(out, models.FriendshipRecord{Horse: t.get(row, colHorse), Friend: friend})
	}
	return out, nil
}

// ParseActiveCourses reads the arena lessons
func (p *Parser) ParseActiveCourses(r io.Reader) ([]models.CourseSlot, error) {
	return p.parseCourses(FileActiveCourses, r, colActiveName, colActiveSkill)
}

// ParsePassiveCourses reads the other sessions
func (p *Parser) ParsePassiveCourses(r io.Reader) ([]models.CourseSlot, error) {
	return p.parseCourses(FilePassiveCourses, r, colPassiveName, colPassiveSkill)
}

// parseCourses drops rows without a valid HH:MM start and end. A missing
// headcount reads as 0 and the engine skips the slot.
func (p *Parser) parseCourses(file string, r io.Reader, nameCol, skillCol string) ([]models.CourseSlot, error) {
	t, err := readTable(file, r)
	if err != nil {
		return nil, err
	}
	if err := t.require(colDay, colStart, colEnd, nameCol, skillCol); err != nil {
		return nil, err
	}

	out := make([]models.CourseSlot, 0, len(t.rows))
	for i, row := range t.rows {
		name := t.get(row, nameCol)
		start, errStart := models.ParseClock(t.get(row, colStart))
		end, errEnd := models.ParseClock(t.get(row, colEnd))
		if errStart != nil || errEnd != nil {
			p.logger.Warn().Str("file", file).Int("row", i+2).Str("course", name).Msg("dropping course without valid times")
			continue
		}

		slot := models.CourseSlot{
			Day:   t.get(row, colDay),
			Start: start,
			End:   end,
			Skill: t.get(row, skillCol),
			Name:  name,
		}
		if v, err := parseNumber(t.get(row, colHeadcount)); err == nil && v > 0 {
			if v != math.Trunc(v) {
				p.logger.Warn().Str("file", file).Int("row", i+2).Str("course", name).Float64("headcount", v).Msg("dropping course with fractional headcount")
				continue
			}
			slot.Required = int(v)
		}
		out = append(out, slot)
	}
	return out, nil
}
