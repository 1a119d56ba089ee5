package config

// CronSchedules overrides registered job schedules by job name.
// Values come from CRON_<JOBNAME> env vars; an empty value keeps the registered schedule.
func CronSchedules() map[string]string {
	return map[string]string{
		"suppliersync": GetEnv("CRON_SUPPLIERSYNC", ""),
	}
}
