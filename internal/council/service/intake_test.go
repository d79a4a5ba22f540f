package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yplabs/council/internal/council/domain"
)

func TestSubmitStudentRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)

	id, err := env.intake().Submit(ctx, SubmitParams{
		FullName:    "A B",
		AccountKind: domain.AccountStudent,
		StudentID:   "12345",
		Year:        69,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	req, err := env.store.Requests().GetRequestByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "12345", req.StudentID)
	require.Equal(t, 69, req.Year)
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.intake()

	cases := []struct {
		name   string
		params SubmitParams
	}{
		{"empty full name", SubmitParams{
			AccountKind: domain.AccountStudent, StudentID: "12345", Year: 2026,
		}},
		{"unknown kind", SubmitParams{
			FullName: "A B", AccountKind: "robot", Email: "a@b.c", Password: "pw",
		}},
		{"short student id", SubmitParams{
			FullName: "A B", AccountKind: domain.AccountStudent, StudentID: "1234", Year: 2026,
		}},
		{"non-numeric student id", SubmitParams{
			FullName: "A B", AccountKind: domain.AccountStudent, StudentID: "12a45", Year: 2026,
		}},
		{"missing year", SubmitParams{
			FullName: "A B", AccountKind: domain.AccountStudent, StudentID: "12345",
		}},
		{"teacher missing email", SubmitParams{
			FullName: "A B", AccountKind: domain.AccountTeacher, Password: "pw",
		}},
		{"teacher bad email", SubmitParams{
			FullName: "A B", AccountKind: domain.AccountTeacher, Email: "not-an-email", Password: "pw",
		}},
		{"other missing password", SubmitParams{
			FullName: "A B", AccountKind: domain.AccountOther, Email: "a@b.c",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.params)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSubmitDuplicateStudentID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.intake()

	_, err := svc.Submit(ctx, SubmitParams{
		FullName: "A B", AccountKind: domain.AccountStudent, StudentID: "12345", Year: 2026,
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, SubmitParams{
		FullName: "C D", AccountKind: domain.AccountStudent, StudentID: "12345", Year: 2026,
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubmitDuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.intake()

	_, err := svc.Submit(ctx, SubmitParams{
		FullName: "A B", AccountKind: domain.AccountTeacher, Email: "t@example.com", Password: "pw",
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, SubmitParams{
		FullName: "C D", AccountKind: domain.AccountOther, Email: "t@example.com", Password: "pw2",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestListRequestsOldestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.intake()

	first, err := svc.Submit(ctx, SubmitParams{
		FullName: "A B", AccountKind: domain.AccountStudent, StudentID: "11111", Year: 2026,
	})
	require.NoError(t, err)

	second, err := svc.Submit(ctx, SubmitParams{
		FullName: "C D", AccountKind: domain.AccountStudent, StudentID: "22222", Year: 2026,
	})
	require.NoError(t, err)

	list, err := svc.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first, list[0].ID)
	require.Equal(t, second, list[1].ID)
}
