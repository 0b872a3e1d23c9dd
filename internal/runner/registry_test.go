package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/fixture"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	f := fixture.Func[env.Env](fixture.Identity[env.Env])

	assert.Equal(t, Fixtures{}, reg.Fixtures("missing"))

	reg.Once("g", f, f)
	reg.Each("g", f)
	reg.Once("g", f)

	got := reg.Fixtures("g")
	assert.Len(t, got.Once, 3)
	assert.Len(t, got.Each, 1)

	got.Once = got.Once[:0]
	assert.Len(t, reg.Fixtures("g").Once, 3, "Fixtures returns a copy")
}

func TestWithRegistry_NilKeepsDefault(t *testing.T) {
	r := New(WithRegistry(nil), WithLogger(nil))
	assert.NotNil(t, r.Registry())
	assert.NotNil(t, r.logger)
}
