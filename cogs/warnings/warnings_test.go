package warnings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingKey(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "short form", arg: "showmod", want: "showmod"},
		{name: "long form", arg: "showmoderator", want: "showmod"},
		{name: "warn channel", arg: "warnchannel", want: "channel"},
		{name: "use warn channel", arg: "usewarnchannel", want: "usechannel"},
		{name: "allow custom reasons", arg: "allowcustomreasons", want: "allowcustom"},
		{name: "mixed case", arg: "AllowCustomReasons", want: "allowcustom"},
		{name: "senddm unchanged", arg: "senddm", want: "senddm"},
		{name: "unknown passes through", arg: "bogus", want: "bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settingKey(tt.arg))
		})
	}
}

func TestOnOff(t *testing.T) {
	assert.Equal(t, "on", onOff(true))
	assert.Equal(t, "off", onOff(false))
}
