package libraries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libris-backend/internal/platform/apierr"
)

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	var api *apierr.Error
	require.ErrorAs(t, err, &api)
	assert.Equal(t, apierr.CodeInvalidArgument, api.Code)
}

// Input validation runs before any store access, so a nil connection
// is fine here.
func TestCreateRejectsBlankFields(t *testing.T) {
	svc := &Service{store: NewStore(nil), log: zap.NewNop()}

	_, err := svc.Create(context.Background(), CreateLibraryRequest{Name: "   ", Location: "Main St"})
	assertInvalid(t, err)

	_, err = svc.Create(context.Background(), CreateLibraryRequest{Name: "Central", Location: ""})
	assertInvalid(t, err)
}

func TestUpdateRejectsBlankFields(t *testing.T) {
	svc := &Service{store: NewStore(nil), log: zap.NewNop()}

	name := "   "
	_, err := svc.Update(context.Background(), 1, UpdateLibraryRequest{Name: &name})
	assertInvalid(t, err)

	location := "\t"
	_, err = svc.Update(context.Background(), 1, UpdateLibraryRequest{Location: &location})
	assertInvalid(t, err)
}
