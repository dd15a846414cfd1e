package planner

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/models"
)

var today = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func subject(name string, days int, d models.Difficulty, topics ...string) models.Subject {
	s := models.Subject{
		Name:       name,
		ExamDate:   models.DateOf(today).AddDate(0, 0, days),
		Difficulty: d,
	}
	for _, t := range topics {
		s.Topics = append(s.Topics, models.Topic{Name: t})
	}
	return s
}

func TestUrgency(t *testing.T) {
	p := New(DefaultPolicy())
	assert.Equal(t, 1.0, p.Urgency(0))
	assert.Equal(t, 1.0, p.Urgency(-4))
	assert.InDelta(t, 0.85, p.Urgency(5), 1e-9)
	assert.InDelta(t, 0.1, p.Urgency(30), 1e-9)
	assert.InDelta(t, 0.1, p.Urgency(90), 1e-9)
}

func TestUrgencyMonotonic(t *testing.T) {
	p := New(DefaultPolicy())
	prev := p.Urgency(60)
	for d := 59; d >= -3; d-- {
		u := p.Urgency(d)
		require.GreaterOrEqual(t, u, prev, "days=%d", d)
		require.LessOrEqual(t, u, 1.0)
		require.GreaterOrEqual(t, u, 0.0)
		prev = u
	}
}

func TestPriorityOrdersByDifficulty(t *testing.T) {
	p := New(DefaultPolicy())
	hard := p.Priority(10, models.Hard)
	medium := p.Priority(10, models.Medium)
	easy := p.Priority(10, models.Easy)
	assert.Greater(t, hard, medium)
	assert.Greater(t, medium, easy)
	assert.LessOrEqual(t, p.Priority(0, models.Hard), 1.0)
}

func TestGenerateUrgentHardSubjectFirst(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{
		subject("History", 25, models.Easy, "WWI"),
		subject("Math", 5, models.Hard, "Calculus", "Algebra"),
	}

	plan, err := p.Generate(subjects, Request{AvailableMinutes: 120, Intensity: models.Moderate}, today)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "Math", plan[0].Subject)
	assert.Equal(t, "Calculus", plan[0].Topic)
	assert.Equal(t, "Math", plan[1].Subject)
	assert.Equal(t, "Algebra", plan[1].Topic)
	assert.LessOrEqual(t, TotalMinutes(plan), 120)
	assert.Equal(t, "exam in 5 days, Hard subject", plan[0].Reason)
	assert.InDelta(t, 0.85, plan[0].Priority, 1e-9)
}

func TestGenerateHistoryRanksBelowMath(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{
		subject("Math", 5, models.Hard, "Calculus", "Algebra"),
		subject("History", 25, models.Easy, "WWI"),
	}
	plan, err := p.Generate(subjects, Request{AvailableMinutes: 600, Intensity: models.Moderate}, today)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, "History", plan[2].Subject)
	assert.Less(t, plan[2].Priority, plan[1].Priority)
}

func TestGenerateNoSubjects(t *testing.T) {
	p := New(DefaultPolicy())
	_, err := p.Generate(nil, Request{AvailableMinutes: 60, Intensity: models.Moderate}, today)
	require.ErrorIs(t, err, apperr.ErrEmptyInput)
}

func TestGenerateUnknownFocus(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{subject("Math", 5, models.Hard, "Calculus")}
	_, err := p.Generate(subjects, Request{AvailableMinutes: 60, FocusSubject: "Art"}, today)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "focus_subject", apperr.FieldOf(err))

	_, err = p.Generate(nil, Request{AvailableMinutes: 60, FocusSubject: "Art"}, today)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGenerateFocusSubjectOnly(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{
		subject("Math", 5, models.Hard, "Calculus"),
		subject("History", 25, models.Easy, "WWI", "WWII"),
	}
	plan, err := p.Generate(subjects, Request{AvailableMinutes: 240, FocusSubject: "History", Intensity: models.Light}, today)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	for _, task := range plan {
		assert.Equal(t, "History", task.Subject)
		assert.Equal(t, 30, task.Duration)
	}
}

func TestGenerateRejectsNonPositiveBudget(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{subject("Math", 5, models.Hard, "Calculus")}
	_, err := p.Generate(subjects, Request{AvailableMinutes: 0}, today)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestGenerateAllCompleteWithoutReview(t *testing.T) {
	p := New(DefaultPolicy())
	s := subject("Math", 5, models.Hard, "Calculus", "Algebra")
	s.Topics[0].Progress = 100
	s.Topics[1].Progress = 100

	plan, err := p.Generate([]models.Subject{s}, Request{AvailableMinutes: 120, Intensity: models.Moderate}, today)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestGenerateReviewMode(t *testing.T) {
	p := New(DefaultPolicy())
	s := subject("Math", 5, models.Hard, "Calculus", "Algebra")
	s.Topics[0].Progress = 100
	s.Topics[1].Progress = 40

	plan, err := p.Generate([]models.Subject{s}, Request{AvailableMinutes: 120, Intensity: models.Moderate, IncludeReview: true}, today)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "Algebra", plan[0].Topic)
	assert.False(t, plan[0].Review)
	assert.Equal(t, "exam in 5 days, Hard subject, 40% done", plan[0].Reason)

	assert.Equal(t, "Calculus", plan[1].Topic)
	assert.True(t, plan[1].Review)
	assert.Contains(t, plan[1].Reason, "review session")
	assert.InDelta(t, 0.85*0.3, plan[1].Priority, 1e-4)
}

func TestGenerateDurationCappedAtBudget(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{subject("Math", 5, models.Hard, "Calculus", "Algebra")}
	plan, err := p.Generate(subjects, Request{AvailableMinutes: 45, Intensity: models.Moderate}, today)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 45, plan[0].Duration)
}

func TestGenerateDoesNotSplitTasks(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{subject("Math", 5, models.Hard, "Calculus", "Algebra")}
	plan, err := p.Generate(subjects, Request{AvailableMinutes: 100, Intensity: models.Intensive}, today)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 90, plan[0].Duration)
}

func TestGenerateTieBreaks(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{
		subject("Physics", 10, models.Medium, "Optics", "Waves"),
		subject("Chemistry", 10, models.Medium, "Bonds"),
		subject("Biology", 12, models.Hard, "Cells"),
	}
	plan, err := p.Generate(subjects, Request{AvailableMinutes: 1000, Intensity: models.Light}, today)
	require.NoError(t, err)

	var order []string
	for _, task := range plan {
		order = append(order, task.Subject+"/"+task.Topic)
	}
	// Biology: urgency 0.64 * 1.0 = 0.64; others 0.7 * 0.85 = 0.595.
	assert.Equal(t, []string{"Biology/Cells", "Chemistry/Bonds", "Physics/Optics", "Physics/Waves"}, order)
}

func TestGenerateTieBreakByDaysBeforeName(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{
		subject("Alpha", 0, models.Hard, "A1"),
		subject("Beta", -2, models.Hard, "B1"),
	}
	plan, err := p.Generate(subjects, Request{AvailableMinutes: 120, Intensity: models.Moderate}, today)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "Beta", plan[0].Subject)
	assert.Equal(t, "exam was 2 days ago, Hard subject", plan[0].Reason)
	assert.Equal(t, "exam today, Hard subject", plan[1].Reason)
}

func TestGenerateIsDeterministic(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{
		subject("Math", 5, models.Hard, "Calculus", "Algebra", "Geometry"),
		subject("History", 25, models.Easy, "WWI"),
		subject("Art", 5, models.Hard, "Color"),
	}
	req := Request{AvailableMinutes: 200, Intensity: models.Light, IncludeReview: true}

	first, err := p.Generate(subjects, req, today)
	require.NoError(t, err)
	second, err := p.Generate(subjects, req, today)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))
}

func TestGenerateRespectsBudgetAndUniqueness(t *testing.T) {
	p := New(DefaultPolicy())
	subjects := []models.Subject{
		subject("Math", 3, models.Hard, "Calculus", "Algebra", "Geometry"),
		subject("History", 14, models.Easy, "WWI", "WWII"),
		subject("Biology", 40, models.Medium, "Cells", "Genetics"),
	}
	for _, budget := range []int{1, 29, 30, 59, 61, 95, 180, 7 * 60} {
		for _, in := range []models.Intensity{models.Light, models.Moderate, models.Intensive} {
			plan, err := p.Generate(subjects, Request{AvailableMinutes: budget, Intensity: in}, today)
			require.NoError(t, err)
			assert.LessOrEqual(t, TotalMinutes(plan), budget)

			seen := map[string]bool{}
			for _, task := range plan {
				key := task.Subject + "\x00" + task.Topic
				assert.False(t, seen[key], "duplicate %s", key)
				seen[key] = true
				assert.NotEmpty(t, task.Reason)
			}
		}
	}
}

func TestPolicyValidate(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())

	p.UrgencyFloor = 1.5
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.HorizonDays = 0
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.SessionMinutes.Light = 0
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.DifficultyWeights.Hard = 2
	assert.Error(t, p.Validate())
}

func TestCustomPolicy(t *testing.T) {
	pol := DefaultPolicy()
	pol.HorizonDays = 10
	pol.UrgencyFloor = 0
	p := New(pol)
	assert.InDelta(t, 0.5, p.Urgency(5), 1e-9)
	assert.Equal(t, 0.0, p.Urgency(10))
}
