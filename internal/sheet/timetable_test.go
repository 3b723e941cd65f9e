package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classdash/internal/model"
)

func timetableRows() [][]string {
	return [][]string{
		{"교시", "시작", "끝", "월", "화", "수", "목", "금"},
		{"1", "9:00", "9:40", "국어", "수학", "영어", "과학", "체육"},
		{"2", "09:50", "10:30", "수학", "국어", "음악", "미술", "도덕"},
	}
}

func TestBuildTimetable(t *testing.T) {
	tt := BuildTimetable(timetableRows())
	require.NotNil(t, tt)

	assert.Equal(t, []string{"월", "화", "수", "목", "금"}, tt.Headers)
	require.Len(t, tt.Periods, 2)
	assert.Equal(t, model.Period{Period: 1, Start: "09:00", End: "09:40"}, tt.Periods[0])
	assert.Equal(t, model.Period{Period: 2, Start: "09:50", End: "10:30"}, tt.Periods[1])
	assert.Equal(t, []string{"국어", "수학", "영어", "과학", "체육"}, tt.Subjects[0])
}

func TestBuildTimetable_TooFewRows(t *testing.T) {
	assert.Nil(t, BuildTimetable(nil))
	assert.Nil(t, BuildTimetable([][]string{{"교시", "시작", "끝"}}))
}

func TestBuildTimetable_SkipsBadRows(t *testing.T) {
	rows := [][]string{
		{"교시", "시작", "끝", "월", "화", "수", "목", "금"},
		{"합계", "9:00", "9:40", "x", "x", "x", "x", "x"}, // non-numeric period
		{"0", "9:00", "9:40", "x", "x", "x", "x", "x"},   // period below 1
		{"1", "9시", "9:40", "x", "x", "x", "x", "x"},     // malformed start
		{"2", "9:50"},                                    // too few columns
		{"3", "10:40", "11:20", "사회", "영어", "국어", "수학", "음악"},
	}

	tt := BuildTimetable(rows)
	require.NotNil(t, tt)
	require.Len(t, tt.Periods, 1)
	assert.Equal(t, 3, tt.Periods[0].Period)
}

func TestBuildTimetable_NoSurvivingRows(t *testing.T) {
	rows := [][]string{
		{"교시", "시작", "끝", "월"},
		{"합계", "", ""},
	}
	assert.Nil(t, BuildTimetable(rows))
}

func TestBuildTimetable_DefaultHeadersAndPadding(t *testing.T) {
	rows := [][]string{
		{"교시", "시작", "끝"},
		{"1", "9:00", "9:40", "국어", "수학"},
	}

	tt := BuildTimetable(rows)
	require.NotNil(t, tt)
	assert.Equal(t, []string{"월", "화", "수", "목", "금"}, tt.Headers)
	require.Len(t, tt.Subjects, 1)
	assert.Equal(t, []string{"국어", "수학", "", "", ""}, tt.Subjects[0])
}
