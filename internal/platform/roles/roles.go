// Package roles はポータルのロールを閉じた列挙として扱う。
// ハンドラ側での role 文字列の直接比較は禁止（ここを経由する）。
package roles

type Role string

const (
	Admin   Role = "admin"
	Staff   Role = "staff"
	Student Role = "student"
)

func Parse(s string) (Role, bool) {
	switch Role(s) {
	case Admin, Staff, Student:
		return Role(s), true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := Parse(string(r))
	return ok
}

// In は許可リスト判定。リストが空なら認証済みであれば誰でも通す。
func (r Role) In(allowed ...Role) bool {
	if len(allowed) == 0 {
		return r.Valid()
	}
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// Privileged は承認・却下など運用側の操作が許されるロールか
func (r Role) Privileged() bool {
	return r == Admin || r == Staff
}
