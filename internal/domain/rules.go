package domain

import (
	"sort"
	"strings"
)

// 允许的航司代码 -> 看板显示名
var airlines = map[string]string{
	"JST": "Jetstar",
	"QFA": "Qantas",
	"RXA": "Regional Express",
	"VOZ": "Virgin Australia",
	"FRE": "Fly Corporate",
}

// 通航城市 -> 常旅客积分
var cityPoints = map[string]int{
	"Sydney":      1200,
	"Melbourne":   1750,
	"Rockhampton": 1400,
	"Adelaide":    1950,
	"Perth":       3375,
}

// CanonicalAirline 忽略大小写匹配，返回大写代码
func CanonicalAirline(code string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	_, ok := airlines[c]
	return c, ok
}

func IsAllowedAirline(code string) bool {
	_, ok := CanonicalAirline(code)
	return ok
}

// AirlineName 未知代码返回空串
func AirlineName(code string) string {
	c, _ := CanonicalAirline(code)
	return airlines[c]
}

// CanonicalCity 忽略大小写，返回标准写法
func CanonicalCity(city string) (string, bool) {
	c := strings.TrimSpace(city)
	for name := range cityPoints {
		if strings.EqualFold(name, c) {
			return name, true
		}
	}
	return "", false
}

func IsAllowedCity(city string) bool {
	_, ok := CanonicalCity(city)
	return ok
}

// CityPoints 城市对应的积分
func CityPoints(city string) (int, bool) {
	c, ok := CanonicalCity(city)
	if !ok {
		return 0, false
	}
	return cityPoints[c], true
}

func AirlineCodes() []string { return sortedKeys(airlines) }

func Cities() []string { return sortedKeys(cityPoints) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
