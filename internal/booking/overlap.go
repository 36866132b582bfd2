package booking

import "time"

// Overlaps 判断两个半开区间 [s1, e1) 和 [s2, e2) 是否重叠。
// 首尾相接（e1 == s2）不算冲突，车辆可以无缝交接。
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
