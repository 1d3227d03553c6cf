package reader

import (
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/flatwire/errs"
)

func vtableSlot(id int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(4 + 2*id)
}

// buildWithFlatbuffers writes the monster with the reference Go runtime.
func buildWithFlatbuffers(m monster) []byte {
	fb := flatbuffers.NewBuilder(0)

	name := fb.CreateString(m.name)
	inventory := fb.CreateByteVector(m.inventory)

	weapons := make([]flatbuffers.UOffsetT, len(m.weapons))
	for i, w := range m.weapons {
		wname := fb.CreateString(w.name)
		fb.StartObject(2)
		fb.PrependUOffsetTSlot(weaponName, wname, 0)
		fb.PrependInt16Slot(weaponDamage, w.damage, 0)
		weapons[i] = fb.EndObject()
	}
	fb.StartVector(4, len(weapons), 4)
	for i := len(weapons) - 1; i >= 0; i-- {
		fb.PrependUOffsetT(weapons[i])
	}
	weaponVec := fb.EndVector(len(weapons))

	tags := make([]flatbuffers.UOffsetT, len(m.tags))
	for i, s := range m.tags {
		tags[i] = fb.CreateString(s)
	}
	fb.StartVector(4, len(tags), 4)
	for i := len(tags) - 1; i >= 0; i-- {
		fb.PrependUOffsetT(tags[i])
	}
	tagVec := fb.EndVector(len(tags))

	fb.StartVector(8, len(m.readings), 8)
	for i := len(m.readings) - 1; i >= 0; i-- {
		fb.PrependFloat64(m.readings[i])
	}
	readingVec := fb.EndVector(len(m.readings))

	fb.StartObject(fieldReadings + 1)
	fb.Prep(4, vec3Size)
	fb.PrependFloat32(m.pos.Z)
	fb.PrependFloat32(m.pos.Y)
	fb.PrependFloat32(m.pos.X)
	fb.PrependStructSlot(fieldPos, fb.Offset(), 0)
	fb.PrependInt16Slot(fieldMana, m.mana, 150)
	fb.PrependInt16Slot(fieldHP, m.hp, 100)
	fb.PrependUOffsetTSlot(fieldName, name, 0)
	fb.PrependUOffsetTSlot(fieldInventory, inventory, 0)
	fb.PrependInt8Slot(fieldColor, m.color, 2)
	fb.PrependUOffsetTSlot(fieldWeapons, weaponVec, 0)
	fb.PrependUOffsetTSlot(fieldTags, tagVec, 0)
	fb.PrependUOffsetTSlot(fieldReadings, readingVec, 0)
	root := fb.EndObject()

	fb.FinishWithFileIdentifier(root, monsterID[:])

	return fb.FinishedBytes()
}

func TestInterop_ReadFlatbuffersBuffer(t *testing.T) {
	want := sampleMonster()
	buf := buildWithFlatbuffers(want)

	r, err := New(buf)
	require.NoError(t, err)
	require.True(t, r.HasIdentifier(monsterID))

	root, err := r.Root()
	require.NoError(t, err)

	pos, err := root.Struct(fieldPos, vec3Size)
	require.NoError(t, err)
	assert.Equal(t, want.pos, parseVec3(pos))

	assert.False(t, root.Has(fieldMana), "default mana is not stored")
	mana, err := GetField[int16](root, fieldMana, 150)
	require.NoError(t, err)
	assert.Equal(t, want.mana, mana)

	hp, err := GetField[int16](root, fieldHP, 100)
	require.NoError(t, err)
	assert.Equal(t, want.hp, hp)

	color, err := GetField[int8](root, fieldColor, 2)
	require.NoError(t, err)
	assert.Equal(t, want.color, color)

	name, err := root.String(fieldName)
	require.NoError(t, err)
	assert.Equal(t, want.name, name)

	inventory, err := root.Vector(fieldInventory)
	require.NoError(t, err)
	assert.Equal(t, want.inventory, inventory.Bytes())

	weapons, err := root.Vector(fieldWeapons)
	require.NoError(t, err)
	require.Equal(t, len(want.weapons), weapons.Len())
	for i, w := range want.weapons {
		tbl, err := weapons.Table(i)
		require.NoError(t, err)
		wname, err := tbl.String(weaponName)
		require.NoError(t, err)
		damage, err := GetField[int16](tbl, weaponDamage, 0)
		require.NoError(t, err)
		assert.Equal(t, w, weapon{wname, damage})
	}

	tags, err := root.Vector(fieldTags)
	require.NoError(t, err)
	gotTags, err := tags.Strings()
	require.NoError(t, err)
	assert.Equal(t, want.tags, gotTags)

	readings, err := root.Vector(fieldReadings)
	require.NoError(t, err)
	gotReadings, err := Materialize[float64](readings)
	require.NoError(t, err)
	assert.Equal(t, want.readings, gotReadings)

	_, err = root.Vector(fieldPath)
	require.ErrorIs(t, err, errs.ErrFieldAbsent)
}

func TestInterop_FlatbuffersReadsBuffer(t *testing.T) {
	want := sampleMonster()
	buf := finishedMonster(t, want)

	require.True(t, flatbuffers.BufferHasIdentifier(buf, monsterID.String()))

	tab := &flatbuffers.Table{Bytes: buf, Pos: flatbuffers.GetUOffsetT(buf)}
	field := func(tab *flatbuffers.Table, id int) flatbuffers.UOffsetT {
		return flatbuffers.UOffsetT(tab.Offset(vtableSlot(id)))
	}

	o := field(tab, fieldPos)
	require.NotZero(t, o)
	assert.Equal(t, want.pos, vec3{
		X: tab.GetFloat32(tab.Pos + o),
		Y: tab.GetFloat32(tab.Pos + o + 4),
		Z: tab.GetFloat32(tab.Pos + o + 8),
	})

	assert.Zero(t, field(tab, fieldMana), "default mana is not stored")

	o = field(tab, fieldHP)
	require.NotZero(t, o)
	assert.Equal(t, want.hp, tab.GetInt16(tab.Pos+o))

	o = field(tab, fieldColor)
	require.NotZero(t, o)
	assert.Equal(t, want.color, tab.GetInt8(tab.Pos+o))

	o = field(tab, fieldName)
	require.NotZero(t, o)
	assert.Equal(t, want.name, tab.String(tab.Pos+o))

	o = field(tab, fieldInventory)
	require.NotZero(t, o)
	assert.Equal(t, want.inventory, tab.ByteVector(tab.Pos+o))

	o = field(tab, fieldWeapons)
	require.NotZero(t, o)
	require.Equal(t, len(want.weapons), tab.VectorLen(o))
	start := tab.Vector(o)
	for i, w := range want.weapons {
		wt := &flatbuffers.Table{Bytes: buf, Pos: tab.Indirect(start + flatbuffers.UOffsetT(i*4))}
		wo := field(wt, weaponName)
		require.NotZero(t, wo)
		assert.Equal(t, w.name, wt.String(wt.Pos+wo))
		wo = field(wt, weaponDamage)
		require.NotZero(t, wo)
		assert.Equal(t, w.damage, wt.GetInt16(wt.Pos+wo))
	}

	o = field(tab, fieldPath)
	require.NotZero(t, o)
	require.Equal(t, len(want.path), tab.VectorLen(o))
	start = tab.Vector(o)
	for i, p := range want.path {
		at := start + flatbuffers.UOffsetT(i*vec3Size)
		assert.Equal(t, p, vec3{tab.GetFloat32(at), tab.GetFloat32(at + 4), tab.GetFloat32(at + 8)})
	}

	o = field(tab, fieldReadings)
	require.NotZero(t, o)
	require.Equal(t, len(want.readings), tab.VectorLen(o))
	start = tab.Vector(o)
	for i, v := range want.readings {
		assert.Equal(t, v, tab.GetFloat64(start+flatbuffers.UOffsetT(i*8))) //nolint:testifylint
	}
}
