package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// Seed はユーザーが1人もいない場合のみデモデータを投入する。
// config の seed: true のときだけ呼ばれる想定。
func Seed(ctx context.Context, conn *sql.DB) error {
	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		log.Println("[INFO] seed: users already present, skipping")
		return nil
	}

	hash := func(p string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(p), 10)
		if err != nil {
			panic(err) // コストが異常な場合のみ
		}
		return string(h)
	}

	return RunInTx(ctx, conn, nil, func(ctx context.Context, tx *sql.Tx) error {
		users := []struct {
			username, password, name, role, rollNo string
		}{
			{"admin", "admin123", "Admin User", "admin", ""},
			{"staff", "staff123", "Staff User", "staff", ""},
			{"student1", "student123", "Student One", "student", "S101"},
			{"student2", "student123", "Student Two", "student", "S102"},
		}
		for _, u := range users {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO users (username, password_hash, name, role, roll_no, created_at) VALUES (?, ?, ?, ?, ?, NOW(6))`,
				u.username, hash(u.password), u.name, u.role, u.rollNo); err != nil {
				return err
			}
		}

		equipment := []struct {
			name, category, cond string
			qty                  int
			desc                 string
		}{
			{"Digital Camera", "Electronics", "Good", 3, "Canon DSLR"},
			{"Microscope", "Lab", "Excellent", 5, "Optical microscope"},
		}
		for _, e := range equipment {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO equipment (name, category, `condition`, quantity, available, description, created_at) VALUES (?, ?, ?, ?, ?, ?, NOW(6))",
				e.name, e.category, e.cond, e.qty, e.qty, e.desc); err != nil {
				return err
			}
		}

		contributors := []struct{ name, roll, contribution string }{
			{"Member A", "R001", "UI/UX & Design"},
			{"Member B", "R002", "Auth & Backend"},
			{"Member C", "R003", "Equipment & Requests"},
			{"Member D", "R004", "Docs & README"},
		}
		for _, c := range contributors {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO contributors (name, roll, contribution) VALUES (?, ?, ?)`,
				c.name, c.roll, c.contribution); err != nil {
				return err
			}
		}

		log.Println("[INFO] seed: demo users / equipment / contributors inserted")
		return nil
	})
}
