package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMultiLogger_SkipsNil(t *testing.T) {
	m := NewMultiLogger(NullLogger{}, nil, NullLogger{})
	assert.Len(t, m.loggers, 2)
}

func TestMultiLogger_FansOut(t *testing.T) {
	a, b := new(mockLogger), new(mockLogger)
	for _, l := range []*mockLogger{a, b} {
		l.On("Info", "i", mock.Anything).Return()
		l.On("Warn", "w", mock.Anything).Return()
		l.On("Error", "e", mock.Anything).Return()
		l.On("Debug", "d", mock.Anything).Return()
		l.On("LogEvaluation", mock.MatchedBy(func(e EvaluationLog) bool {
			return e.Subject == "add"
		})).Return()
	}

	m := NewMultiLogger(a, b)
	m.Info("i")
	m.Warn("w")
	m.Error("e")
	m.Debug("d")
	m.LogEvaluation(EvaluationLog{Subject: "add"})

	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestMultiLogger_WithFields(t *testing.T) {
	a := new(mockLogger)
	a.On("WithFields", mock.Anything).Return(NullLogger{})

	child := NewMultiLogger(a).WithFields(LogField("k", "v"))
	assert.IsType(t, &MultiLogger{}, child)
	a.AssertExpectations(t)
}

func TestMultiLogger_CloseJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	a, b, c := new(mockLogger), new(mockLogger), new(mockLogger)
	a.On("Close").Return(errA)
	b.On("Close").Return(nil)
	c.On("Close").Return(errB)

	err := NewMultiLogger(a, b, c).Close()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}
