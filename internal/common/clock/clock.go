package clock

import "time"

// Clock 抽象“当前时间”，便于业务层在测试里注入固定时间。
type Clock interface {
	Now() time.Time
}

// System 使用真实系统时间。
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed 返回固定时间，测试用。
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
