package users

import (
	"context"

	"hackportal/internal/metrics"
)

// ReconcileResult reports what a reconciliation pass changed.
type ReconcileResult struct {
	Removed int
	Added   int
}

// ReconcileLinks repairs drift between students.proctor_id and the proctors'
// assigned sets: join rows that contradict a student's proctor reference are
// removed, missing rows are restored. The pass is idempotent, so it can run on
// a timer and after every reassignment without coordination.
func (s *Service) ReconcileLinks(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult

	links, err := s.store.ListLinks(ctx)
	if err != nil {
		return res, err
	}
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return res, err
	}

	want := make(map[Link]bool, len(students))
	for _, st := range students {
		if st.ProctorID != nil && *st.ProctorID != "" {
			want[Link{ProctorID: *st.ProctorID, StudentID: st.ID}] = true
		}
	}
	have := make(map[Link]bool, len(links))
	for _, l := range links {
		have[l] = true
	}

	for _, l := range links {
		if want[l] {
			continue
		}
		if err := s.store.UnassignStudent(ctx, l.ProctorID, l.StudentID); err != nil {
			return res, err
		}
		res.Removed++
		metrics.ReconcileRepairs.WithLabelValues("removed").Inc()
	}
	for _, st := range students {
		if st.ProctorID == nil || *st.ProctorID == "" {
			continue
		}
		l := Link{ProctorID: *st.ProctorID, StudentID: st.ID}
		if have[l] {
			continue
		}
		if err := s.store.AssignStudent(ctx, l.ProctorID, l.StudentID); err != nil {
			return res, err
		}
		res.Added++
		metrics.ReconcileRepairs.WithLabelValues("added").Inc()
	}
	return res, nil
}
