package builtin

import (
	"context"
	"strings"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

// timezoneAliases maps common city and country names (Korean and English) to
// IANA zone names. Lookup is case-insensitive.
var timezoneAliases = map[string]string{
	"한국": "Asia/Seoul", "서울": "Asia/Seoul", "seoul": "Asia/Seoul", "korea": "Asia/Seoul",
	"도쿄": "Asia/Tokyo", "tokyo": "Asia/Tokyo", "일본": "Asia/Tokyo", "japan": "Asia/Tokyo",
	"베이징": "Asia/Shanghai", "beijing": "Asia/Shanghai", "상하이": "Asia/Shanghai", "shanghai": "Asia/Shanghai", "중국": "Asia/Shanghai", "china": "Asia/Shanghai",
	"홍콩": "Asia/Hong_Kong", "hong kong": "Asia/Hong_Kong",
	"싱가포르": "Asia/Singapore", "singapore": "Asia/Singapore",
	"뉴욕": "America/New_York", "new york": "America/New_York", "us east": "America/New_York",
	"로스앤젤레스": "America/Los_Angeles", "los angeles": "America/Los_Angeles", "la": "America/Los_Angeles", "us west": "America/Los_Angeles",
	"시카고": "America/Chicago", "chicago": "America/Chicago", "us central": "America/Chicago",
	"런던": "Europe/London", "london": "Europe/London", "영국": "Europe/London", "uk": "Europe/London",
	"파리": "Europe/Paris", "paris": "Europe/Paris", "프랑스": "Europe/Paris", "france": "Europe/Paris",
	"베를린": "Europe/Berlin", "berlin": "Europe/Berlin", "독일": "Europe/Berlin", "germany": "Europe/Berlin",
	"모스크바": "Europe/Moscow", "moscow": "Europe/Moscow",
	"시드니": "Australia/Sydney", "sydney": "Australia/Sydney", "호주": "Australia/Sydney", "australia": "Australia/Sydney",
	"utc": "UTC", "gmt": "UTC",
}

const defaultTimezone = "Asia/Seoul"

// Clock reports the current time in a requested timezone (default Seoul).
type Clock struct {
	// now is swappable for tests.
	now func() time.Time
}

func NewClock() *Clock { return &Clock{now: time.Now} }

func (c *Clock) Schema() tool.Schema {
	return tool.Schema{
		Name:        "time_now",
		Description: "Get the current time in a timezone (default: Asia/Seoul); accepts city names like 서울, tokyo, new york",
		Params: map[string]tool.Param{
			"timezone": {
				Type:        tool.TypeString,
				Description: "IANA zone name or a known city/country alias",
			},
		},
	}
}

func (c *Clock) Timeout() time.Duration { return 5 * time.Second }

type clockRequest struct {
	Timezone string `json:"timezone"`
}

func (c *Clock) Execute(_ context.Context, params map[string]any) tool.Result {
	var req clockRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid time_now params: %v", err)
	}

	zone := resolveTimezone(req.Timezone)
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return tool.Errorf("unknown timezone %q", req.Timezone)
	}

	now := c.now().In(loc)
	return tool.Success(map[string]any{
		"timezone":  zone,
		"iso":       now.Format(time.RFC3339),
		"unix":      now.Unix(),
		"weekday":   now.Weekday().String(),
		"utcOffset": now.Format("-07:00"),
	})
}

func resolveTimezone(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return defaultTimezone
	}
	if zone, ok := timezoneAliases[strings.ToLower(requested)]; ok {
		return zone
	}
	return requested
}
