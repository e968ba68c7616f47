package notify

import "fmt"

// Message builders for the notification service. The texts mirror the
// emails the platform sends on registration and OAuth sign-in.

func RegistrationNotification(firstName, lastName, email, confirmLink string) Notification {
	fullName := firstName + " " + lastName
	message := "Hello " + fullName + "!\n"
	message += "You have successfully registered on QuickKick platform!\n"
	message += "In order to finish your registration, please click on the following link below:\n"
	message += confirmLink + "\n"
	message += "Thank you for using QuickKick and LET'S MOVE!"

	return Notification{Email: email, Message: message, Error: false}
}

func OAuthNotification(givenName, familyName, email string) Notification {
	fullName := familyName + " " + givenName
	message := "Hello " + fullName + "!\n"
	message += "By using your account for logging into QuickKick, automatically an account was created."
	message += " In order to finish your registration, an phone number needs to be added.\n"
	message += "Thank you for using QuickKick and LET'S MOVE!"

	return Notification{Email: email, Message: message, Error: false}
}

func AdministratorRequest(businessName, email string) Notification {
	message := fmt.Sprintf("Administrator registration request for %q awaits approval.", businessName)
	return Notification{Email: email, Message: message, Error: false}
}

func ConfirmLink(base, token string) string {
	return fmt.Sprintf("%s/%s", base, token)
}
