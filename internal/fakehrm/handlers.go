package fakehrm

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"
)

const required = "Required"

func (s *Server) loginPage(c *gin.Context) {
	s.render(c, http.StatusOK, "login.html", nil)
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	token, ok := s.store.Login(username, c.PostForm("password"), s.opts.Credentials)
	if !ok {
		log.Info().Str("username", username).Msg("fakehrm rejected login")
		s.render(c, http.StatusOK, "login.html", pongo2.Context{
			"error":    "Invalid credentials",
			"username": username,
		})
		return
	}
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	c.Redirect(http.StatusFound, DashboardPath)
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.store.Logout(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, LoginPath)
}

func (s *Server) dashboard(c *gin.Context) {
	s.render(c, http.StatusOK, "dashboard.html", pongo2.Context{
		"candidates": len(s.store.Candidates(CandidateQuery{})),
		"vacancies":  len(s.store.Vacancies(VacancyQuery{Status: "Active"})),
	})
}

func (s *Server) candidates(c *gin.Context) {
	q := CandidateQuery{
		JobTitle: c.Query("jobTitle"),
		Vacancy:  c.Query("vacancy"),
		Manager:  c.Query("hiringManager"),
		Status:   c.Query("status"),
		Name:     c.Query("candidateName"),
		Keywords: c.Query("keywords"),
		From:     c.Query("fromDate"),
		To:       c.Query("toDate"),
		Method:   c.Query("method"),
	}
	all := s.store.Candidates(q)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	start := min((page-1)*s.opts.PageSize, len(all))
	end := min(start+s.opts.PageSize, len(all))

	var next, prev string
	if end < len(all) {
		next = pageURL(c.Request.URL, page+1)
	}
	if page > 1 {
		prev = pageURL(c.Request.URL, page-1)
	}

	s.render(c, http.StatusOK, "candidates.html", pongo2.Context{
		"q":          q,
		"rows":       all[start:end],
		"total":      len(all),
		"page":       page,
		"next_url":   next,
		"prev_url":   prev,
		"job_titles": s.store.JobTitles,
		"vacancies":  s.store.VacancyNames(false),
		"managers":   s.store.Employees,
		"statuses":   s.store.Statuses,
		"methods":    s.store.Methods,
	})
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}

func (s *Server) candidateForm(c *gin.Context, code int, form map[string]string, errs map[string]string) {
	s.render(c, code, "candidate_form.html", pongo2.Context{
		"form":      form,
		"errors":    errs,
		"vacancies": s.store.VacancyNames(true),
	})
}

func (s *Server) newCandidate(c *gin.Context) {
	s.candidateForm(c, http.StatusOK, map[string]string{}, map[string]string{})
}

var candidateFields = []string{
	"firstName", "middleName", "lastName", "vacancy", "email", "contactNumber",
	"keywords", "dateOfApplication", "notes", "consent",
}

func postedForm(c *gin.Context, fields []string) map[string]string {
	form := make(map[string]string, len(fields))
	for _, f := range fields {
		form[f] = strings.TrimSpace(c.PostForm(f))
	}
	return form
}

func (s *Server) createCandidate(c *gin.Context) {
	form := postedForm(c, candidateFields)
	errs := map[string]string{}
	for _, f := range []string{"firstName", "lastName", "email"} {
		if form[f] == "" {
			errs[f] = required
		}
	}
	if form["email"] != "" && !strings.Contains(form["email"], "@") {
		errs["email"] = "Expected format: admin@example.com"
	}
	var applied time.Time
	if d := form["dateOfApplication"]; d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			errs["dateOfApplication"] = "Should be a valid date in yyyy-mm-dd format"
		}
		applied = t
	}
	if len(errs) > 0 {
		s.candidateForm(c, http.StatusOK, form, errs)
		return
	}

	id := s.store.AddCandidate(Candidate{
		FirstName:     form["firstName"],
		MiddleName:    form["middleName"],
		LastName:      form["lastName"],
		Email:         form["email"],
		ContactNumber: form["contactNumber"],
		Keywords:      form["keywords"],
		Notes:         form["notes"],
		Vacancy:       form["vacancy"],
		Consent:       form["consent"] != "",
		Applied:       applied,
	})
	log.Info().Int("id", id).Str("email", form["email"]).Msg("fakehrm candidate added")
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/%d?toast=saved", addCandidatePath, id))
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func (s *Server) candidateProfile(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cand, err := s.store.Candidate(id)
	if err != nil {
		c.String(http.StatusNotFound, "candidate %d not found", id)
		return
	}
	s.render(c, http.StatusOK, "candidate_profile.html", pongo2.Context{"candidate": cand})
}

func (s *Server) deleteCandidate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.store.DeleteCandidate(id); err != nil {
		c.String(http.StatusNotFound, "candidate %d not found", id)
		return
	}
	log.Info().Int("id", id).Msg("fakehrm candidate deleted")
	c.Redirect(http.StatusFound, CandidatesPath+"?toast=deleted")
}

func (s *Server) vacancies(c *gin.Context) {
	q := VacancyQuery{
		JobTitle: c.Query("jobTitle"),
		Name:     c.Query("vacancyName"),
		Manager:  c.Query("hiringManager"),
		Status:   c.Query("status"),
	}
	rows := s.store.Vacancies(q)
	s.render(c, http.StatusOK, "vacancies.html", pongo2.Context{
		"q":          q,
		"rows":       rows,
		"total":      len(rows),
		"job_titles": s.store.JobTitles,
		"vacancies":  s.store.VacancyNames(false),
		"managers":   s.store.Employees,
		"statuses":   []string{"Active", "Closed"},
	})
}

var vacancyFields = []string{"name", "jobTitle", "description", "hiringManager", "numOfPositions", "active"}

func (s *Server) vacancyForm(c *gin.Context, code int, vacancy *Vacancy, form, errs map[string]string) {
	s.render(c, code, "vacancy_form.html", pongo2.Context{
		"vacancy":    vacancy,
		"form":       form,
		"errors":     errs,
		"job_titles": s.store.JobTitles,
		"employees":  s.store.Employees,
	})
}

func vacancyToForm(v Vacancy) map[string]string {
	form := map[string]string{
		"name":           v.Name,
		"jobTitle":       v.JobTitle,
		"description":    v.Description,
		"hiringManager":  v.HiringManager,
		"numOfPositions": "",
		"active":         "",
	}
	if v.Positions > 0 {
		form["numOfPositions"] = strconv.Itoa(v.Positions)
	}
	if v.Active {
		form["active"] = "on"
	}
	return form
}

// parseVacancy validates a posted vacancy form.
func (s *Server) parseVacancy(form map[string]string) (Vacancy, map[string]string) {
	errs := map[string]string{}
	v := Vacancy{
		Name:          form["name"],
		JobTitle:      form["jobTitle"],
		Description:   form["description"],
		HiringManager: form["hiringManager"],
		Active:        form["active"] != "",
	}
	if v.Name == "" {
		errs["name"] = required
	}
	if v.JobTitle == "" {
		errs["jobTitle"] = required
	} else if !slices.Contains(s.store.JobTitles, v.JobTitle) {
		errs["jobTitle"] = "Invalid"
	}
	if v.HiringManager == "" {
		errs["hiringManager"] = required
	} else if !slices.Contains(s.store.Employees, v.HiringManager) {
		errs["hiringManager"] = "Invalid"
	}
	if p := form["numOfPositions"]; p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 99 {
			errs["numOfPositions"] = "Should be a number between 1-99"
		}
		v.Positions = n
	}
	return v, errs
}

func (s *Server) newVacancy(c *gin.Context) {
	s.vacancyForm(c, http.StatusOK, nil, map[string]string{"active": "on"}, map[string]string{})
}

func (s *Server) createVacancy(c *gin.Context) {
	form := postedForm(c, vacancyFields)
	v, errs := s.parseVacancy(form)
	if len(errs) > 0 {
		s.vacancyForm(c, http.StatusOK, nil, form, errs)
		return
	}
	id := s.store.AddVacancy(v)
	log.Info().Int("id", id).Str("name", v.Name).Msg("fakehrm vacancy added")
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/%d?toast=saved", addVacancyPath, id))
}

func (s *Server) loadVacancy(c *gin.Context) (Vacancy, bool) {
	id, ok := idParam(c)
	if !ok {
		return Vacancy{}, false
	}
	v, err := s.store.Vacancy(id)
	if err != nil {
		c.String(http.StatusNotFound, "vacancy %d not found", id)
		return Vacancy{}, false
	}
	return v, true
}

func (s *Server) editVacancy(c *gin.Context) {
	v, ok := s.loadVacancy(c)
	if !ok {
		return
	}
	s.vacancyForm(c, http.StatusOK, &v, vacancyToForm(v), map[string]string{})
}

func (s *Server) updateVacancy(c *gin.Context) {
	current, ok := s.loadVacancy(c)
	if !ok {
		return
	}
	form := postedForm(c, vacancyFields)
	v, errs := s.parseVacancy(form)
	if len(errs) > 0 {
		s.vacancyForm(c, http.StatusOK, &current, form, errs)
		return
	}
	v.ID = current.ID
	if err := s.store.UpdateVacancy(v); err != nil {
		c.String(http.StatusNotFound, "vacancy %d not found", v.ID)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/%d?toast=updated", addVacancyPath, v.ID))
}

func (s *Server) uploadAttachment(c *gin.Context) {
	v, ok := s.loadVacancy(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		s.vacancyForm(c, http.StatusOK, &v, vacancyToForm(v), map[string]string{"file": required})
		return
	}
	if file.Size > maxAttachmentBytes {
		s.vacancyForm(c, http.StatusOK, &v, vacancyToForm(v), map[string]string{"file": "Attachment Size Exceeded"})
		return
	}
	err = s.store.AddAttachment(v.ID, Attachment{
		FileName:    file.Filename,
		Size:        file.Size,
		ContentType: file.Header.Get("Content-Type"),
		Comment:     strings.TrimSpace(c.PostForm("comment")),
	})
	if err != nil {
		c.String(http.StatusNotFound, "vacancy %d not found", v.ID)
		return
	}
	log.Info().Int("vacancy", v.ID).Str("file", file.Filename).Int64("size", file.Size).Msg("fakehrm attachment added")
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/%d?toast=saved", addVacancyPath, v.ID))
}
