package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/accounts"
	"github.com/erazemk/najdeno/internal/model"
)

var staffInput accounts.SignupInput

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage drop-off staff accounts",
}

var staffAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a staff account with a generated password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		password, err := generatePassword(16)
		if err != nil {
			return fmt.Errorf("generating password: %w", err)
		}

		in := staffInput
		in.Password = password
		in.Role = model.RoleStaff
		if in.EmergencyContactName == "" {
			in.EmergencyContactName = in.FirstName + " " + in.LastName
		}
		if in.EmergencyContactPhone == "" {
			in.EmergencyContactPhone = in.Phone
		}

		user, err := accounts.Signup(context.Background(), database, in)
		if err != nil {
			return fmt.Errorf("creating staff account: %w", err)
		}

		printStaffResult(user.Email, password)
		return nil
	},
}

func init() {
	f := staffAddCmd.Flags()
	f.StringVar(&staffInput.Email, "email", "", "login email")
	f.StringVar(&staffInput.FirstName, "first-name", "", "first name")
	f.StringVar(&staffInput.LastName, "last-name", "", "last name")
	f.StringVar(&staffInput.Phone, "phone", "", "contact phone")
	f.StringVar(&staffInput.EmergencyContactName, "emergency-name", "", "emergency contact (default: the staff member)")
	f.StringVar(&staffInput.EmergencyContactPhone, "emergency-phone", "", "emergency contact phone (default: --phone)")
	for _, name := range []string{"email", "first-name", "last-name", "phone"} {
		_ = staffAddCmd.MarkFlagRequired(name)
	}

	staffCmd.AddCommand(staffAddCmd)
}

// printStaffResult prints the new account's credentials to stdout.
func printStaffResult(email, password string) {
	fmt.Println("Staff account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed after signing in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
