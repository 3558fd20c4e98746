// Package services defines the error taxonomy shared by workflow stages.
package services
