// Package validation 用户/航班注册共用的字段规则，全部是纯函数，只返回 bool
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MinAge = 0
	MaxAge = 99

	MinFrequentFlyerNumber = 100000
	MaxFrequentFlyerNumber = 999999

	MinPoints = 0
	MaxPoints = 1000000

	MinNumericStaffID = 1000
	MaxNumericStaffID = 9000

	MinPasswordLen = 8
	// bcrypt 只接受 72 字节以内
	MaxPasswordBytes = 72
)

var (
	mobileRx     = regexp.MustCompile(`^0\d{9}$`)
	emailRx      = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
	flightCodeRx = regexp.MustCompile(`^[A-Z]{2,3}\d{3}$`) // QFA250
	planeIDRx    = regexp.MustCompile(`^[A-Z]{3}\d+[AD]$`) // QFA8A / QFA8D
)

// IsValidName 只允许字母、空格、撇号、连字符，至少一个字母
func IsValidName(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case isASCIILetter(r):
			hasLetter = true
		case r == ' ', r == '\'', r == '-':
		default:
			return false
		}
	}
	return hasLetter
}

func IsValidAge(n int) bool { return n >= MinAge && n <= MaxAge }

// IsValidMobile 0 开头的 10 位数字
func IsValidMobile(s string) bool { return mobileRx.MatchString(s) }

// IsValidEmail 只要求一个 @ 且两边非空
func IsValidEmail(s string) bool { return emailRx.MatchString(s) }

// IsValidPassword 至少 8 个字符、不超过 72 字节，需含大写、小写和数字
func IsValidPassword(s string) bool {
	if utf8.RuneCountInString(s) < MinPasswordLen || len(s) > MaxPasswordBytes {
		return false
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

func IsValidFlightCode(s string) bool { return flightCodeRx.MatchString(s) }

func IsValidPlaneID(s string) bool { return planeIDRx.MatchString(s) }

func IsValidFrequentFlyerNumber(n int) bool {
	return n >= MinFrequentFlyerNumber && n <= MaxFrequentFlyerNumber
}

func IsValidPoints(n int) bool { return n >= MinPoints && n <= MaxPoints }

// IsValidStaffID 员工号自由文本，只拒绝空白
func IsValidStaffID(s string) bool { return strings.TrimSpace(s) != "" }

// IsValidNumericStaffID 更严格的策略：1000-9000 的整数
func IsValidNumericStaffID(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return n >= MinNumericStaffID && n <= MaxNumericStaffID
}

// NormalizeEmail 所有邮箱比较都用这个形式
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func isASCIILetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
