package domain

type JobRole string

const (
	JobRoleFullStack       JobRole = "Full-Stack Developer"
	JobRoleFrontend        JobRole = "Frontend Developer"
	JobRoleBackend         JobRole = "Backend Developer"
	JobRoleMLEngineer      JobRole = "Machine Learning Engineer"
	JobRoleDataScientist   JobRole = "Data Scientist"
	JobRoleDevOps          JobRole = "DevOps Engineer"
	JobRoleMobile          JobRole = "Mobile Developer"
	JobRoleProductManager  JobRole = "Product Manager"
	JobRoleUIUXDesigner    JobRole = "UI/UX Designer"
	JobRoleDataAnalyst     JobRole = "Data Analyst"
	JobRoleCloudEngineer   JobRole = "Cloud Engineer"
	JobRoleCybersecurity   JobRole = "Cybersecurity Engineer"
	JobRoleQAEngineer      JobRole = "QA Engineer"
	JobRoleBusinessAnalyst JobRole = "Business Analyst"
	JobRoleSoftwareEngineer  JobRole = "Software Engineer"
)

var JobRoles = []JobRole{
	JobRoleFullStack,
	JobRoleFrontend,
	JobRoleBackend,
	JobRoleMLEngineer,
	JobRoleDataScientist,
	JobRoleDevOps,
	JobRoleMobile,
	JobRoleProductManager,
	JobRoleUIUXDesigner,
	JobRoleDataAnalyst,
	JobRoleCloudEngineer,
	JobRoleCybersecurity,
	JobRoleQAEngineer,
	JobRoleBusinessAnalyst,
	JobRoleSoftwareEngineer,
}

func (r JobRole) Known() bool {
	for _, role := range JobRoles {
		if role == r {
			return true
		}
	}
	return false
}
