package frames_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/choromap/internal/frames"
	"github.com/san-kum/choromap/internal/series"
)

func day(s string) time.Time {
	d, err := series.ParseDate(s)
	Expect(err).NotTo(HaveOccurred())
	return d
}

func isoDates(ds []time.Time) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = series.FormatDate(d)
	}
	return out
}

var _ = Describe("Sequence", func() {
	var m *series.Matrix

	BeforeEach(func() {
		var err error
		m, err = series.NewMatrix("cases",
			[]string{"A", "B"},
			day("2020-01-30"),
			[][]float64{{1, 2, 3, 4}, {0, 0, 5, 5}},
			nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns every day of the range for all", func() {
		dates, err := frames.Sequence(m, frames.All(), time.Time{})
		Expect(err).NotTo(HaveOccurred())
		Expect(dates).To(HaveLen(series.DaysBetween(m.MinDate(), m.MaxDate()) + 1))
		Expect(isoDates(dates)).To(Equal([]string{"2020-01-30", "2020-01-31", "2020-02-01", "2020-02-02"}))
	})

	It("starts at an explicit begin date", func() {
		dates, err := frames.Sequence(m, frames.All(), day("2020-02-01"))
		Expect(err).NotTo(HaveOccurred())
		Expect(isoDates(dates)).To(Equal([]string{"2020-02-01", "2020-02-02"}))
	})

	It("returns exactly n consecutive days, possibly past the last date", func() {
		dates, err := frames.Sequence(m, frames.N(5), time.Time{})
		Expect(err).NotTo(HaveOccurred())
		Expect(dates).To(HaveLen(5))
		Expect(series.FormatDate(dates[0])).To(Equal("2020-01-30"))
		Expect(series.FormatDate(dates[4])).To(Equal("2020-02-03"))
		for i := 1; i < len(dates); i++ {
			Expect(series.DaysBetween(dates[i-1], dates[i])).To(Equal(1))
		}
	})

	DescribeTable("rejects invalid frame counts",
		func(n int) {
			dates, err := frames.Sequence(m, frames.N(n), time.Time{})
			Expect(dates).To(BeNil())
			Expect(err).To(MatchError(series.ErrConfiguration))
			Expect(err.Error()).To(ContainSubstring("must be 'all' or an integer greater than 1"))
		},
		Entry("one", 1),
		Entry("zero", 0),
		Entry("negative", -3),
	)

	It("rejects a begin date outside the range", func() {
		_, err := frames.Sequence(m, frames.All(), day("2020-03-01"))
		Expect(err).To(MatchError(series.ErrDateRange))

		_, err = frames.Sequence(m, frames.N(3), day("2019-12-31"))
		Expect(err).To(MatchError(series.ErrDateRange))
	})

	It("does not mutate the matrix and is repeatable", func() {
		before, _ := m.Row("A")
		first, _ := frames.Sequence(m, frames.N(3), time.Time{})
		second, _ := frames.Sequence(m, frames.N(3), time.Time{})
		Expect(second).To(Equal(first))
		after, _ := m.Row("A")
		Expect(after).To(Equal(before))
	})
})

var _ = Describe("ParseCount", func() {
	It("accepts all and integers above one", func() {
		c, err := frames.ParseCount("ALL")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.IsAll()).To(BeTrue())

		c, err = frames.ParseCount("12")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Frames()).To(Equal(12))
	})

	It("rejects anything else", func() {
		for _, s := range []string{"1", "0", "-2", "many", "2.5"} {
			_, err := frames.ParseCount(s)
			Expect(err).To(MatchError(series.ErrConfiguration), s)
		}
	})
})

var _ = Describe("Name", func() {
	d := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)

	It("keys by ISO date", func() {
		Expect(frames.Name(frames.KeyDate, 7, d, "png")).To(Equal("2020-03-01.png"))
	})

	It("keys by zero-padded index", func() {
		Expect(frames.Name(frames.KeyIndex, 7, d, "png")).To(Equal("0007.png"))
	})

	It("names a sequence in order", func() {
		names := frames.Names(frames.KeyIndex, []time.Time{d, d.AddDate(0, 0, 1)}, "svg")
		Expect(names).To(Equal([]string{"0000.svg", "0001.svg"}))
	})

	It("formats the on-map label", func() {
		Expect(frames.PrettyDate(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC))).To(Equal("February 01, 2020"))
	})

	It("parses keying names", func() {
		k, err := frames.ParseKeying("index")
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(frames.KeyIndex))
		_, err = frames.ParseKeying("ordinal")
		Expect(err).To(MatchError(series.ErrConfiguration))
	})
})
