package reader

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/flatwire/builder"
	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
)

// Monster field ids.
const (
	fieldPos       = 0 // struct Vec3
	fieldMana      = 1 // int16, default 150
	fieldHP        = 2 // int16, default 100
	fieldName      = 3 // string
	fieldFriendly  = 4 // bool, deprecated
	fieldInventory = 5 // []uint8
	fieldColor     = 6 // int8, default 2
	fieldWeapons   = 7 // []Weapon
	fieldPath      = 8 // []Vec3
	fieldTags      = 9 // []string
	fieldReadings  = 10
)

// Weapon field ids.
const (
	weaponName   = 0
	weaponDamage = 1
)

const vec3Size = 12

var monsterID = format.MustIdentifier("MONS")

type vec3 struct{ X, Y, Z float32 }

func (v vec3) bytes() []byte {
	b := make([]byte, vec3Size)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))

	return b
}

func parseVec3(b []byte) vec3 {
	return vec3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

type weapon struct {
	name   string
	damage int16
}

type monster struct {
	pos       vec3
	mana      int16
	hp        int16
	name      string
	inventory []uint8
	color     int8
	weapons   []weapon
	path      []vec3
	tags      []string
	readings  []float64
}

func sampleMonster() monster {
	return monster{
		pos:       vec3{1, 2, 3},
		mana:      150,
		hp:        300,
		name:      "Orc",
		inventory: []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		color:     1,
		weapons:   []weapon{{"Sword", 3}, {"Axe", 5}},
		path:      []vec3{{1, 2, 3}, {4, 5, 6}},
		tags:      []string{"green", "", "angry"},
		readings:  []float64{0.5, -1.25, math.Pi},
	}
}

func buildWeapon(t testing.TB, b *builder.Builder, w weapon) builder.TableOffset {
	t.Helper()

	name, err := b.CreateString(w.name)
	require.NoError(t, err)

	require.NoError(t, b.StartTable())
	require.NoError(t, b.AddFieldOffset(weaponName, name))
	require.NoError(t, builder.AddField(b, weaponDamage, w.damage, 0))
	off, err := b.EndTable()
	require.NoError(t, err)

	return off
}

func buildMonster(t testing.TB, b *builder.Builder, m monster) builder.TableOffset {
	t.Helper()

	name, err := b.CreateString(m.name)
	require.NoError(t, err)

	inventory, err := builder.CreateVector(b, m.inventory)
	require.NoError(t, err)

	weapons := make([]builder.TableOffset, len(m.weapons))
	for i, w := range m.weapons {
		weapons[i] = buildWeapon(t, b, w)
	}
	weaponVec, err := builder.CreateOffsetVector(b, weapons)
	require.NoError(t, err)

	path := make([]byte, 0, len(m.path)*vec3Size)
	for _, p := range m.path {
		path = append(path, p.bytes()...)
	}
	pathVec, err := b.CreateStructVector(path, vec3Size, 4)
	require.NoError(t, err)

	tags := make([]builder.StringOffset, len(m.tags))
	for i, s := range m.tags {
		tags[i], err = b.CreateString(s)
		require.NoError(t, err)
	}
	tagVec, err := builder.CreateOffsetVector(b, tags)
	require.NoError(t, err)

	readings, err := builder.CreateVector(b, m.readings)
	require.NoError(t, err)

	require.NoError(t, b.StartTable())
	require.NoError(t, b.AddFieldStruct(fieldPos, m.pos.bytes(), 4))
	require.NoError(t, builder.AddField(b, fieldMana, m.mana, 150))
	require.NoError(t, builder.AddField(b, fieldHP, m.hp, 100))
	require.NoError(t, b.AddFieldOffset(fieldName, name))
	require.NoError(t, b.AddFieldOffset(fieldInventory, inventory))
	require.NoError(t, builder.AddField(b, fieldColor, m.color, 2))
	require.NoError(t, b.AddFieldOffset(fieldWeapons, weaponVec))
	require.NoError(t, b.AddFieldOffset(fieldPath, pathVec))
	require.NoError(t, b.AddFieldOffset(fieldTags, tagVec))
	require.NoError(t, b.AddFieldOffset(fieldReadings, readings))
	off, err := b.EndTable()
	require.NoError(t, err)

	return off
}

func finishedMonster(t testing.TB, m monster) []byte {
	t.Helper()

	b, err := builder.NewBuilder()
	require.NoError(t, err)

	root := buildMonster(t, b, m)
	require.NoError(t, b.FinishWithFileIdentifier(root, monsterID))

	buf, err := b.FinishedBytes()
	require.NoError(t, err)

	return buf
}

func readMonster(t testing.TB, tbl Table) monster {
	t.Helper()

	var m monster

	pos, err := tbl.Struct(fieldPos, vec3Size)
	require.NoError(t, err)
	m.pos = parseVec3(pos)

	m.mana, err = GetField[int16](tbl, fieldMana, 150)
	require.NoError(t, err)
	m.hp, err = GetField[int16](tbl, fieldHP, 100)
	require.NoError(t, err)
	m.color, err = GetField[int8](tbl, fieldColor, 2)
	require.NoError(t, err)

	m.name, err = tbl.String(fieldName)
	require.NoError(t, err)

	inventory, err := tbl.Vector(fieldInventory)
	require.NoError(t, err)
	m.inventory = append([]uint8(nil), inventory.Bytes()...)

	weapons, err := tbl.Vector(fieldWeapons)
	require.NoError(t, err)
	for i := range weapons.Len() {
		w, err := weapons.Table(i)
		require.NoError(t, err)
		name, err := w.String(weaponName)
		require.NoError(t, err)
		damage, err := GetField[int16](w, weaponDamage, 0)
		require.NoError(t, err)
		m.weapons = append(m.weapons, weapon{name, damage})
	}

	path, err := tbl.Vector(fieldPath)
	require.NoError(t, err)
	for i := range path.Len() {
		p, err := path.Struct(i, vec3Size)
		require.NoError(t, err)
		m.path = append(m.path, parseVec3(p))
	}

	tags, err := tbl.Vector(fieldTags)
	require.NoError(t, err)
	m.tags, err = tags.Strings()
	require.NoError(t, err)

	readings, err := tbl.Vector(fieldReadings)
	require.NoError(t, err)
	m.readings, err = Materialize[float64](readings)
	require.NoError(t, err)

	return m
}

func TestReader_RoundTrip(t *testing.T) {
	want := sampleMonster()
	buf := finishedMonster(t, want)

	r, err := New(buf)
	require.NoError(t, err)
	require.True(t, r.HasIdentifier(monsterID))

	root, err := r.Root()
	require.NoError(t, err)

	got := readMonster(t, root)
	assert.Equal(t, want, got)
}

func TestReader_DefaultsAndAbsence(t *testing.T) {
	b, err := builder.NewBuilder()
	require.NoError(t, err)

	empty, err := builder.CreateVector(b, []uint8{})
	require.NoError(t, err)

	require.NoError(t, b.StartTable())
	require.NoError(t, builder.AddField[int16](b, fieldMana, 150, 150))
	require.NoError(t, builder.AddField[int16](b, fieldHP, 80, 100))
	require.NoError(t, b.AddFieldOffset(fieldInventory, empty))
	root, err := b.EndTable()
	require.NoError(t, err)
	require.NoError(t, b.Finish(root))

	buf, err := b.FinishedBytes()
	require.NoError(t, err)

	r, err := New(buf)
	require.NoError(t, err)
	tbl, err := r.Root()
	require.NoError(t, err)

	t.Run("elided scalar reads default", func(t *testing.T) {
		assert.False(t, tbl.Has(fieldMana))
		mana, err := GetField[int16](tbl, fieldMana, 150)
		require.NoError(t, err)
		assert.Equal(t, int16(150), mana)
	})

	t.Run("present scalar", func(t *testing.T) {
		assert.True(t, tbl.Has(fieldHP))
		hp, err := GetField[int16](tbl, fieldHP, 100)
		require.NoError(t, err)
		assert.Equal(t, int16(80), hp)
	})

	t.Run("absent ids beyond vtable", func(t *testing.T) {
		assert.False(t, tbl.Has(200))
		v, err := GetField[uint64](tbl, 200, 7)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), v)
		ok, err := tbl.GetBool(fieldFriendly, true)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("absent offset field", func(t *testing.T) {
		_, err := tbl.String(fieldName)
		require.ErrorIs(t, err, errs.ErrFieldAbsent)
		_, err = tbl.Vector(fieldTags)
		require.ErrorIs(t, err, errs.ErrFieldAbsent)
		_, err = tbl.Table(fieldWeapons)
		require.ErrorIs(t, err, errs.ErrFieldAbsent)
		_, err = tbl.Struct(fieldPos, vec3Size)
		require.ErrorIs(t, err, errs.ErrFieldAbsent)
	})

	t.Run("empty vector is present", func(t *testing.T) {
		v, err := tbl.Vector(fieldInventory)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Len())
		assert.Empty(t, v.Bytes())
	})

	t.Run("no identifier", func(t *testing.T) {
		assert.False(t, r.HasIdentifier(monsterID))
	})
}

func TestReader_ScalarBits(t *testing.T) {
	b, err := builder.NewBuilder()
	require.NoError(t, err)

	require.NoError(t, b.StartTable())
	require.NoError(t, builder.AddField(b, 0, float32(1.5), 0))
	require.NoError(t, builder.AddField(b, 1, int64(-2), 0))
	require.NoError(t, b.AddFieldBool(2, true, false))
	root, err := b.EndTable()
	require.NoError(t, err)
	require.NoError(t, b.Finish(root))

	buf, err := b.FinishedBytes()
	require.NoError(t, err)
	r, err := New(buf)
	require.NoError(t, err)
	tbl, err := r.Root()
	require.NoError(t, err)

	bits, err := tbl.ScalarBits(0, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.Float32bits(1.5)), bits)

	bits, err = tbl.ScalarBits(1, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), int64(bits))

	flag, err := tbl.GetBool(2, false)
	require.NoError(t, err)
	assert.True(t, flag)

	bits, err = tbl.ScalarBits(5, 2, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), bits)

	_, err = tbl.ScalarBits(0, 3, 0)
	require.ErrorIs(t, err, errs.ErrInvalidDescriptor)
}

func TestReader_VectorAccess(t *testing.T) {
	buf := finishedMonster(t, sampleMonster())
	r, err := New(buf)
	require.NoError(t, err)
	root, err := r.Root()
	require.NoError(t, err)

	inventory, err := root.Vector(fieldInventory)
	require.NoError(t, err)

	t.Run("At", func(t *testing.T) {
		v, err := At[uint8](inventory, 9)
		require.NoError(t, err)
		assert.Equal(t, uint8(9), v)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := At[uint8](inventory, 10)
		require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
		_, err = At[uint8](inventory, -1)
		require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

		tags, err := root.Vector(fieldTags)
		require.NoError(t, err)
		_, err = tags.String(3)
		require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	})

	t.Run("empty string element is present", func(t *testing.T) {
		tags, err := root.Vector(fieldTags)
		require.NoError(t, err)
		s, err := tags.StringBytes(1)
		require.NoError(t, err)
		assert.Empty(t, s)
	})

	t.Run("strings are terminated", func(t *testing.T) {
		name, err := root.StringBytes(fieldName)
		require.NoError(t, err)
		assert.Equal(t, "Orc", string(name))

		pos, err := root.Offset(fieldName)
		require.NoError(t, err)
		end := int(pos) + 4 + len(name)
		require.Less(t, end, len(buf))
		assert.Equal(t, byte(0), buf[end])
	})

	t.Run("UnsafeString", func(t *testing.T) {
		s, err := root.UnsafeString(fieldName)
		require.NoError(t, err)
		assert.Equal(t, "Orc", s)
	})
}

func TestView(t *testing.T) {
	if !endian.IsNativeLittleEndian() {
		t.Skip("typed views need a little-endian host")
	}

	want := sampleMonster()
	buf := finishedMonster(t, want)

	t.Run("aligned", func(t *testing.T) {
		r, err := New(buf)
		require.NoError(t, err)
		root, err := r.Root()
		require.NoError(t, err)
		readings, err := root.Vector(fieldReadings)
		require.NoError(t, err)

		view, err := View[float64](readings)
		require.NoError(t, err)
		assert.Equal(t, want.readings, view)
	})

	t.Run("misaligned copy", func(t *testing.T) {
		shifted := make([]byte, len(buf)+1)[1:]
		copy(shifted, buf)

		r, err := New(shifted)
		require.NoError(t, err)
		root, err := r.Root()
		require.NoError(t, err)
		readings, err := root.Vector(fieldReadings)
		require.NoError(t, err)

		_, err = View[float64](readings)
		require.ErrorIs(t, err, errs.ErrViewUnavailable)

		got, err := Materialize[float64](readings)
		require.NoError(t, err)
		assert.Equal(t, want.readings, got)
	})
}

func TestReader_SizePrefixed(t *testing.T) {
	b, err := builder.NewBuilder()
	require.NoError(t, err)

	root := buildMonster(t, b, sampleMonster())
	require.NoError(t, b.FinishSizePrefixedWithFileIdentifier(root, monsterID))
	buf, err := b.FinishedBytes()
	require.NoError(t, err)

	assert.Equal(t, uint32(len(buf)-4), binary.LittleEndian.Uint32(buf))

	r, err := NewSizePrefixed(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf)-4, r.Len())
	assert.True(t, r.HasIdentifier(monsterID))

	tbl, err := r.Root()
	require.NoError(t, err)
	assert.Equal(t, sampleMonster(), readMonster(t, tbl))

	_, err = NewSizePrefixed(buf[:len(buf)-1])
	require.ErrorIs(t, err, errs.ErrOutOfBounds)
}

func TestReader_Malformed(t *testing.T) {
	buf := finishedMonster(t, sampleMonster())

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			name:    "too short",
			mutate:  func(b []byte) []byte { return b[:3] },
			wantErr: errs.ErrBufferTooShort,
		},
		{
			name: "root beyond buffer",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b, uint32(len(b)))
				return b
			},
			wantErr: errs.ErrOutOfBounds,
		},
		{
			name:    "truncated",
			mutate:  func(b []byte) []byte { return b[:8] },
			wantErr: errs.ErrOutOfBounds,
		},
		{
			name: "vtable outside buffer",
			mutate: func(b []byte) []byte {
				root := binary.LittleEndian.Uint32(b)
				binary.LittleEndian.PutUint32(b[root:], 0x80000001)
				return b
			},
			wantErr: errs.ErrOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), buf...))

			r, err := New(data)
			if err == nil {
				_, err = r.Root()
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("vector length beyond buffer", func(t *testing.T) {
		data := append([]byte(nil), buf...)
		r, err := New(data)
		require.NoError(t, err)
		root, err := r.Root()
		require.NoError(t, err)
		pos, err := root.Offset(fieldInventory)
		require.NoError(t, err)

		binary.LittleEndian.PutUint32(data[pos:], math.MaxUint32)
		_, err = root.Vector(fieldInventory)
		require.ErrorIs(t, err, errs.ErrOutOfBounds)
	})
}

func TestReader_ConcurrentAccess(t *testing.T) {
	want := sampleMonster()
	buf := finishedMonster(t, want)

	r, err := New(buf)
	require.NoError(t, err)
	root, err := r.Root()
	require.NoError(t, err)

	var mu sync.Mutex
	names := make([]string, 0, 32)

	var g errgroup.Group
	for range 32 {
		g.Go(func() error {
			name, err := root.String(fieldName)
			if err != nil {
				return err
			}

			weapons, err := root.Vector(fieldWeapons)
			if err != nil {
				return err
			}
			for i := range weapons.Len() {
				w, err := weapons.Table(i)
				if err != nil {
					return err
				}
				if _, err := GetField[int16](w, weaponDamage, 0); err != nil {
					return err
				}
			}

			mu.Lock()
			names = append(names, name)
			mu.Unlock()

			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, names, 32)
	for _, name := range names {
		assert.Equal(t, want.name, name)
	}
}
