package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"classdash/internal/model"
)

// schoolDay returns a clock on Monday 2026-03-02, a regular class day.
func schoolDay(hour, min, sec int) time.Time {
	return time.Date(2026, 3, 2, hour, min, sec, 0, time.UTC)
}

func testPeriods() []model.Period {
	return []model.Period{
		{Period: 1, Start: "09:00", End: "09:40"},
		{Period: 2, Start: "09:50", End: "10:30"},
		{Period: 3, Start: "10:40", End: "11:20"},
		{Period: 4, Start: "12:30", End: "13:10"},
	}
}

func TestStatus_Weekend(t *testing.T) {
	sat := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	st := Status(testPeriods(), sat)
	assert.Equal(t, model.StatusAfterSchool, st.Type)
	assert.Equal(t, "주말", st.Message)
	assert.Equal(t, -1, st.MinutesLeft)

	sun := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "주말", Status(nil, sun).Message)
}

func TestStatus_NoTimetable(t *testing.T) {
	st := Status(nil, schoolDay(10, 0, 0))
	assert.Equal(t, model.StatusBeforeSchool, st.Type)
	assert.Equal(t, "시간표 없음", st.Message)
}

func TestStatus_Transitions(t *testing.T) {
	cases := []struct {
		name        string
		now         time.Time
		wantType    model.StatusType
		wantCurrent int
		wantNext    int
		wantLeft    int
	}{
		{"early morning", schoolDay(7, 0, 0), model.StatusBeforeSchool, 0, 1, 120},
		{"last minute before prep", schoolDay(8, 49, 59), model.StatusBeforeSchool, 0, 1, 11},
		{"prep window opens", schoolDay(8, 50, 0), model.StatusPrep, 0, 1, 10},
		{"prep window end", schoolDay(8, 59, 0), model.StatusPrep, 0, 1, 1},
		{"first period starts", schoolDay(9, 0, 0), model.StatusInClass, 1, 2, 40},
		{"mid class", schoolDay(9, 20, 0), model.StatusInClass, 1, 2, 20},
		{"class end is break", schoolDay(9, 40, 0), model.StatusBreak, 0, 2, 10},
		{"break ends at next start", schoolDay(9, 50, 0), model.StatusInClass, 2, 3, 40},
		{"long gap is lunch", schoolDay(11, 30, 0), model.StatusLunch, 0, 4, 60},
		{"last period", schoolDay(12, 30, 0), model.StatusInClass, 4, 0, 40},
		{"school out", schoolDay(13, 10, 0), model.StatusAfterSchool, 0, 0, -1},
		{"evening", schoolDay(18, 0, 0), model.StatusAfterSchool, 0, 0, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := Status(testPeriods(), tc.now)
			assert.Equal(t, tc.wantType, st.Type)
			assert.Equal(t, tc.wantCurrent, st.CurrentPeriod)
			assert.Equal(t, tc.wantNext, st.NextPeriod)
			assert.Equal(t, tc.wantLeft, st.MinutesLeft)
		})
	}
}

func TestStatus_SecondsDoNotShiftState(t *testing.T) {
	// 09:39:59 is still in class; only the minute matters.
	st := Status(testPeriods(), schoolDay(9, 39, 59))
	assert.Equal(t, model.StatusInClass, st.Type)
	assert.Equal(t, 1, st.MinutesLeft)
}

func TestStatus_InClassMessage(t *testing.T) {
	st := Status(testPeriods(), schoolDay(10, 0, 0))
	assert.Equal(t, "2교시 수업 중", st.Message)
}
