package fieldset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/fieldset"
)

type boundAddress struct {
	City string `fieldset:"city"`
	Zip  string `fieldset:"zip"`
}

type boundUser struct {
	ID      int64  `fieldset:"id"`
	Name    string `fieldset:"name"`
	Active  bool   `fieldset:"active"`
	Address boundAddress
}

func TestBind_Struct(t *testing.T) {
	address := fieldset.New("Address").
		Field("city", fieldset.String()).
		Field("zip", fieldset.String()).
		MustBuild()
	user := fieldset.New("User").
		Field("id", fieldset.Int()).
		Field("name", fieldset.String()).
		Field("active", fieldset.Bool().Default(true)).
		Field("address", fieldset.Object(address)).
		MustBuild()

	inst, err := user.Load(map[string]any{
		"id":   1,
		"name": "alice",
		"address": map[string]any{
			"city": "tokyo",
			"zip":  "100-0001",
		},
	})
	require.NoError(t, err)

	var out boundUser
	require.NoError(t, fieldset.Bind(inst, &out))
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "alice", out.Name)
	assert.True(t, out.Active, "defaults reach the bound struct")
	assert.Equal(t, "tokyo", out.Address.City)
	assert.Equal(t, "100-0001", out.Address.Zip)
}

func TestBind_UnsetFieldsLeaveZeroValues(t *testing.T) {
	st := fieldset.New("T").
		Field("id", fieldset.Int()).
		Field("name", fieldset.String().Optional()).
		MustBuild()
	inst, err := st.Load(map[string]any{"id": 2})
	require.NoError(t, err)

	out := struct {
		ID   int64  `fieldset:"id"`
		Name string `fieldset:"name"`
	}{Name: "untouched"}
	require.NoError(t, fieldset.Bind(inst, &out))
	assert.Equal(t, int64(2), out.ID)
	assert.Equal(t, "untouched", out.Name, "unset fields must not be written")
}

func TestBind_PartialSkipsUnreachable(t *testing.T) {
	user := fieldset.New("User").
		Field("id", fieldset.Int()).
		Field("secret", fieldset.String()).
		MustBuild()
	form := fieldset.New("Form").
		Field("user", fieldset.PartialInclude(user, "id")).
		MustBuild()

	inst, err := form.Load(map[string]any{"user": map[string]any{"id": 9}})
	require.NoError(t, err)
	part := inst.MustGet("user").(*fieldset.Instance)

	out := struct {
		ID     int64  `fieldset:"id"`
		Secret string `fieldset:"secret"`
	}{}
	require.NoError(t, fieldset.Bind(part, &out))
	assert.Equal(t, int64(9), out.ID)
	assert.Empty(t, out.Secret)
}

func TestBind_RejectsNonPointer(t *testing.T) {
	st := fieldset.New("T").Field("id", fieldset.Int()).MustBuild()
	inst, err := st.Load(map[string]any{"id": 1})
	require.NoError(t, err)

	var out struct {
		ID int64 `fieldset:"id"`
	}
	assert.Error(t, fieldset.Bind(inst, out))
}
