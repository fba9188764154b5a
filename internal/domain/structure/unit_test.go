package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStereo_FreshCopy(t *testing.T) {
	a := DefaultStereo()
	a[1] = "alpha"
	assert.Equal(t, "beta", DefaultStereo()[1])
}

func TestEffectiveStereo_PerKeyOverride(t *testing.T) {
	u := UnitSpec{Index: 1, Stereo: StereoMap{2: "D"}}

	got := u.EffectiveStereo()

	assert.Equal(t, StereoMap{1: "beta", 2: "D", 3: "L", 4: "D", 5: "L"}, got)
	assert.Equal(t, StereoMap{2: "D"}, u.Stereo, "overrides must not be modified")
}

func TestEffectiveStereo_NoOverrides(t *testing.T) {
	assert.Equal(t, DefaultStereo(), UnitSpec{}.EffectiveStereo())
}

func TestMerge_DoesNotMutateReceiver(t *testing.T) {
	base := DefaultStereo()
	merged := base.Merge(StereoMap{1: "alpha", 5: "D"})

	assert.Equal(t, "beta", base[1])
	assert.Equal(t, "L", base[5])
	assert.Equal(t, "alpha", merged[1])
	assert.Equal(t, "D", merged[5])
	assert.Equal(t, "L", merged[2])
}

func TestStereoMap_Validate(t *testing.T) {
	require.NoError(t, DefaultStereo().Validate())
	assert.Error(t, StereoMap{6: "L"}.Validate())
	assert.Error(t, StereoMap{0: "L"}.Validate())
	assert.Error(t, StereoMap{3: ""}.Validate())
}

func TestStereoMap_Keys(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5}, DefaultStereo().Keys())
}

func TestRenumber(t *testing.T) {
	units := []UnitSpec{{Index: 7}, {Index: 0}, {Index: 3}}
	Renumber(units)
	for i, u := range units {
		assert.Equal(t, i+1, u.Index)
	}
}

//Personal.AI order the ending
