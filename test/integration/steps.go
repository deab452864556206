package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	server       *ServerInstance
	browser      *http.Client
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		if err := s.tc.ResetDatabase(); err != nil {
			return ctx, err
		}
		return ctx, s.tc.ClearMessages()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.server != nil {
			s.server.Stop()
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^a Flasky server is running$`, s.aFlaskyServerIsRunning)
	sc.Step(`^a Flasky server is running without an administrator$`, s.aFlaskyServerIsRunningWithoutAnAdministrator)
	sc.Step(`^the visitor "([^"]*)" already exists$`, s.theVisitorAlreadyExists)

	// Browser steps
	sc.Step(`^I open the home page$`, s.iOpenTheHomePage)
	sc.Step(`^I submit the name "([^"]*)"$`, s.iSubmitTheName)
	sc.Step(`^I follow the redirect$`, s.iFollowTheRedirect)
	sc.Step(`^I switch to a new browser$`, s.iSwitchToANewBrowser)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^I should be redirected to "([^"]*)"$`, s.iShouldBeRedirectedTo)
	sc.Step(`^the page should contain "([^"]*)"$`, s.thePageShouldContain)
	sc.Step(`^the page should not contain "([^"]*)"$`, s.thePageShouldNotContain)

	// State steps
	sc.Step(`^the visitor "([^"]*)" should be stored$`, s.theVisitorShouldBeStored)
	sc.Step(`^there should be (\d+) stored visitors?$`, s.thereShouldBeStoredVisitors)
	sc.Step(`^the administrator should receive (\d+) emails? with subject "([^"]*)"$`, s.theAdministratorShouldReceiveEmailsWithSubject)
	sc.Step(`^no email should be sent$`, s.noEmailShouldBeSent)
}

// Background steps

func (s *StepsContext) aFlaskyServerIsRunning() error {
	return s.startServer(DefaultServerConfig())
}

func (s *StepsContext) aFlaskyServerIsRunningWithoutAnAdministrator() error {
	return s.startServer(ServerConfig{})
}

func (s *StepsContext) startServer(cfg ServerConfig) error {
	instance, err := StartServer(s.tc, cfg)
	if err != nil {
		return err
	}
	s.server = instance
	return s.iSwitchToANewBrowser()
}

func (s *StepsContext) theVisitorAlreadyExists(name string) error {
	return s.tc.DB.Create(&model.Visitor{Username: name}).Error
}

// Browser steps

func (s *StepsContext) iSwitchToANewBrowser() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	s.browser = &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return nil
}

func (s *StepsContext) iOpenTheHomePage() error {
	return s.do(http.MethodGet, "/", nil)
}

func (s *StepsContext) iSubmitTheName(name string) error {
	form := url.Values{"name": {name}, "submit": {"Submit"}}
	return s.do(http.MethodPost, "/", form)
}

func (s *StepsContext) iFollowTheRedirect() error {
	if s.response == nil {
		return fmt.Errorf("no previous response")
	}
	location := s.response.Header.Get("Location")
	if location == "" {
		return fmt.Errorf("previous response (%d) has no Location header", s.response.StatusCode)
	}
	return s.do(http.MethodGet, location, nil)
}

func (s *StepsContext) do(method, path string, form url.Values) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(method, s.server.ServerURL+path, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	s.response, err = s.browser.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) iShouldBeRedirectedTo(path string) error {
	if got := s.response.Header.Get("Location"); got != path {
		return fmt.Errorf("expected redirect to %q, got %q", path, got)
	}
	return nil
}

func (s *StepsContext) thePageShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected page to contain %q, got: %s", text, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) thePageShouldNotContain(text string) error {
	if strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected page not to contain %q", text)
	}
	return nil
}

// State steps

func (s *StepsContext) theVisitorShouldBeStored(name string) error {
	var count int64
	if err := s.tc.DB.Model(&model.Visitor{}).Where("username = ?", name).Count(&count).Error; err != nil {
		return err
	}
	if count != 1 {
		return fmt.Errorf("expected visitor %q to be stored once, found %d", name, count)
	}
	return nil
}

func (s *StepsContext) thereShouldBeStoredVisitors(expected int) error {
	var count int64
	if err := s.tc.DB.Model(&model.Visitor{}).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d stored visitors, found %d", expected, count)
	}
	return nil
}

func (s *StepsContext) theAdministratorShouldReceiveEmailsWithSubject(expected int, subject string) error {
	var (
		matching int
		err      error
	)
	// Mailpit indexes messages asynchronously after accepting them
	deadline := time.Now().Add(5 * time.Second)
	for {
		matching, err = s.countMessages(subject)
		if err != nil {
			return err
		}
		if matching >= expected || time.Now().After(deadline) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	if matching != expected {
		return fmt.Errorf("expected %d email(s) to %s with subject %q, found %d", expected, adminRecipient, subject, matching)
	}
	return nil
}

func (s *StepsContext) countMessages(subject string) (int, error) {
	messages, err := s.tc.Messages()
	if err != nil {
		return 0, err
	}

	matching := 0
	for _, msg := range messages {
		if msg.Subject != subject {
			continue
		}
		for _, to := range msg.To {
			if to.Address == adminRecipient {
				matching++
			}
		}
	}
	return matching, nil
}

func (s *StepsContext) noEmailShouldBeSent() error {
	// Give a stray delivery the chance to land before asserting
	time.Sleep(500 * time.Millisecond)
	messages, err := s.tc.Messages()
	if err != nil {
		return err
	}
	if len(messages) != 0 {
		return fmt.Errorf("expected no email, found %d", len(messages))
	}
	return nil
}
