package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackportal/internal/users"
	"hackportal/internal/users/usertest"
)

func TestReconcileRepairsDrift(t *testing.T) {
	store := usertest.NewStore()
	svc := users.NewService(store, usertest.NewSubmissions())

	pa := store.AddProctor(users.Proctor{Name: "A", Email: "a@tce.edu"})
	pb := store.AddProctor(users.Proctor{Name: "B", Email: "b@tce.edu"})

	// s1 points at B but the join row still says A (crash between unlink and link).
	s1 := store.AddStudent(users.Student{Name: "S1", Email: "s1@tce.edu", RegisterNo: "21CS01", ProctorID: &pb.ID})
	store.Link(pa.ID, s1.ID)

	// s2 points at A but has no join row at all.
	s2 := store.AddStudent(users.Student{Name: "S2", Email: "s2@tce.edu", RegisterNo: "21CS02", ProctorID: &pa.ID})

	// s3 has no proctor but a stale join row.
	s3 := store.AddStudent(users.Student{Name: "S3", Email: "s3@tce.edu", RegisterNo: "21CS03"})
	store.Link(pb.ID, s3.ID)

	res, err := svc.ReconcileLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, 2, res.Added)

	assert.Equal(t, []string{s2.ID}, store.AssignedTo(pa.ID))
	assert.Equal(t, []string{s1.ID}, store.AssignedTo(pb.ID))
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := usertest.NewStore()
	svc := users.NewService(store, usertest.NewSubmissions())

	pa := store.AddProctor(users.Proctor{Name: "A", Email: "a@tce.edu"})
	st := store.AddStudent(users.Student{Name: "S", Email: "s@tce.edu", RegisterNo: "21CS01", ProctorID: &pa.ID})

	first, err := svc.ReconcileLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Added)

	second, err := svc.ReconcileLinks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Removed)
	assert.Zero(t, second.Added)

	assert.Equal(t, []string{st.ID}, store.AssignedTo(pa.ID))
}

func TestReconcileConsistentStoreUntouched(t *testing.T) {
	store := usertest.NewStore()
	svc := users.NewService(store, usertest.NewSubmissions())

	pa := store.AddProctor(users.Proctor{Name: "A", Email: "a@tce.edu"})
	st := store.AddStudent(users.Student{Name: "S", Email: "s@tce.edu", RegisterNo: "21CS01", ProctorID: &pa.ID})
	store.Link(pa.ID, st.ID)

	res, err := svc.ReconcileLinks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Removed)
	assert.Zero(t, res.Added)
}
